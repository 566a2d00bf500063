// Package api defines the JSON wire types shared by the backend handlers and
// the client transport.
package api

import "encoding/json"

// Record is the wire form of one synced record. The owner is implied by the
// bearer token and never travels in the body.
type Record struct {
	Id      string          `json:"id"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
	Version int64           `json:"version"`
}

// RegisterRequest creates a user account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest authenticates a user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and the owner id the client
// should scope its local mirror to.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	OwnerId     string `json:"owner_id"`
}

// UpsertResponse returns the server-assigned version after a push.
type UpsertResponse struct {
	Id      string `json:"id"`
	Kind    string `json:"kind"`
	Version int64  `json:"version"`
}

// PullResponse returns the owner's records changed since the requested
// version, plus the latest version seen for cursor advancement.
type PullResponse struct {
	Records       []Record `json:"records"`
	LatestVersion int64    `json:"latest_version"`
}

// ContentURLResponse carries a presigned download URL for one asset.
type ContentURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
