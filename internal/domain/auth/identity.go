package auth

import "github.com/google/uuid"

// Identity is a caller verified by the auth collaborator. ID is the only
// trusted source of ownership.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
}
