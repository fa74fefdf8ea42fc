// Package models contains the wire types shared by the console and the admin API.
package models

// LoginRequest is the credential exchange body of POST auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued on a successful sign-in.
type LoginResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the error payload every admin endpoint uses for non-2xx answers.
type ErrorResponse struct {
	Error string `json:"error"`
}
