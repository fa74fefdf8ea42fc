package keys

// maskMarker replaces the middle of a masked secret.
const maskMarker = "****"

// MaskSecret redacts a secret for display. Values of eight characters or fewer
// are returned unchanged; longer ones keep their first and last four.
// Always mask the true secret: masking an already masked string is not the
// same as re-deriving it.
func MaskSecret(value string) string {
	r := []rune(value)
	if len(r) <= 8 {
		return value
	}
	return string(r[:4]) + maskMarker + string(r[len(r)-4:])
}
