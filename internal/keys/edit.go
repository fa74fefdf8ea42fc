package keys

import "github.com/kiranshivaraju/keyconsole/pkg/models"

// Reveal is the display state of the secret in the edit view.
type Reveal int

const (
	Hidden Reveal = iota
	Revealed
)

func (r Reveal) String() string {
	if r == Revealed {
		return "revealed"
	}
	return "hidden"
}

// EditSession is the record currently open in the edit view. It exists only
// while the view is open and holds the true secret for reveal.
type EditSession struct {
	ID       string
	KeyName  string
	IsActive bool
	Reveal   Reveal

	secret string
}

func newEditSession(k models.APIKey) *EditSession {
	return &EditSession{
		ID:       k.ID,
		KeyName:  k.KeyName,
		IsActive: k.IsActive,
		Reveal:   Hidden,
		secret:   k.APIKey,
	}
}

// Display returns the secret as the edit view shows it: masked while hidden,
// in full while revealed. Both forms derive from the stored true secret.
func (e EditSession) Display() string {
	if e.Reveal == Revealed {
		return e.secret
	}
	return MaskSecret(e.secret)
}

// ToggleLabelKey is the message key for the reveal control: it offers the
// opposite of the current state.
func (e EditSession) ToggleLabelKey() string {
	if e.Reveal == Revealed {
		return "hide"
	}
	return "show"
}
