package models

// APIKey is one gateway credential as the admin API returns it.
// The secret is only populated by the single-key endpoint and by a create call
// that made the server generate it; list rows carry it for masking only.
// Usage counters and timestamps are computed by the server.
type APIKey struct {
	ID                string `json:"id"`
	KeyName           string `json:"key_name"`
	APIKey            string `json:"api_key"`
	IsActive          bool   `json:"is_active"`
	CreatedAt         string `json:"created_at"`
	TotalRequests     int64  `json:"total_requests"`
	TotalInputTokens  int64  `json:"total_input_tokens"`
	TotalOutputTokens int64  `json:"total_output_tokens"`
}

// APIKeyList is the envelope of GET api-keys.
type APIKeyList struct {
	APIKeys []APIKey `json:"api_keys"`
}

// CreateKeyRequest is the body of POST api-keys. An empty APIKey asks the
// server to generate the secret.
type CreateKeyRequest struct {
	KeyName string `json:"key_name"`
	APIKey  string `json:"api_key,omitempty"`
}

// UpdateKeyRequest is the body of PUT api-keys/{id}. Only the name and the
// active flag are mutable.
type UpdateKeyRequest struct {
	KeyName  string `json:"key_name"`
	IsActive bool   `json:"is_active"`
}
