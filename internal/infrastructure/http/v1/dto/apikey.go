package dto

import (
	"time"

	"almacen/internal/domain/auth"
)

// IssueKeyRequest for issuing a new API key.
type IssueKeyRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

// IssuedKeyResponse carries the plain key exactly once. The secret is
// not recoverable afterwards.
type IssuedKeyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	KeyID       string    `json:"keyId"`
	Key         string    `json:"key"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromIssuedKey builds the one-time response.
func FromIssuedKey(key *auth.APIKey, plain string) IssuedKeyResponse {
	return IssuedKeyResponse{
		ID:          key.ID.String(),
		Name:        key.Name,
		KeyID:       key.KeyID,
		Key:         plain,
		Permissions: key.Perms,
		CreatedAt:   key.CreatedAt,
	}
}
