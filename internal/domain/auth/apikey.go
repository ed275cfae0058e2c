package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
	"almacen/pkg/logger"
)

// Permissions grantable to API keys.
const (
	PermReadStock     = "read_stock"
	PermUpdateStock   = "update_stock"
	PermCreateSale    = "create_sale"
	PermCreatePayment = "create_payment"
	PermReadReports   = "read_reports"
)

// AllPermissions lists every grantable permission.
var AllPermissions = []string{
	PermReadStock,
	PermUpdateStock,
	PermCreateSale,
	PermCreatePayment,
	PermReadReports,
}

// keyPrefix marks platform API keys: "mk_<keyID>_<secret>".
const keyPrefix = "mk"

// APIKey is a stored key record. Only the bcrypt hash of the secret is
// persisted; the full key is shown once at issue time.
type APIKey struct {
	ID         id.ID      `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	KeyID      string     `db:"key_id" json:"keyId"`
	SecretHash string     `db:"secret_hash" json:"-"`
	Perms      []string   `db:"permissions" json:"permissions"`
	IsActive   bool       `db:"is_active" json:"isActive"`
	LastUsedAt *time.Time `db:"last_used_at" json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// APIKeyRepository defines storage operations for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	GetByKeyID(ctx context.Context, keyID string) (*APIKey, error)
	List(ctx context.Context) ([]*APIKey, error)
	Revoke(ctx context.Context, keyID id.ID) error
	TouchLastUsed(ctx context.Context, keyID id.ID, at time.Time) error
}

// APIKeyService issues and authenticates API keys.
type APIKeyService struct {
	repo APIKeyRepository
}

// NewAPIKeyService creates a new API key service.
func NewAPIKeyService(repo APIKeyRepository) *APIKeyService {
	return &APIKeyService{repo: repo}
}

// Issue creates a key with the given permissions and returns the record
// plus the plain key string. The plain key is never recoverable after
// this call.
func (s *APIKeyService) Issue(ctx context.Context, name string, perms []string) (*APIKey, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", apperror.NewValidation("key name is required").
			WithDetail("field", "name")
	}
	for _, p := range perms {
		if !validPermission(p) {
			return nil, "", apperror.NewValidation("unknown permission").
				WithDetail("permission", p)
		}
	}

	keyID, err := randomHex(8)
	if err != nil {
		return nil, "", fmt.Errorf("generate key id: %w", err)
	}
	secret, err := randomHex(24)
	if err != nil {
		return nil, "", fmt.Errorf("generate secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash secret: %w", err)
	}

	key := &APIKey{
		ID:         id.New(),
		Name:       strings.TrimSpace(name),
		KeyID:      keyID,
		SecretHash: string(hash),
		Perms:      perms,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, "", err
	}

	plain := fmt.Sprintf("%s_%s_%s", keyPrefix, keyID, secret)
	logger.Info(ctx, "api key issued", "key_id", keyID, "name", key.Name)
	return key, plain, nil
}

// Authenticate validates a presented key and returns the actor it
// represents. Lookup by key id keeps the bcrypt comparison to a single
// stored hash.
func (s *APIKeyService) Authenticate(ctx context.Context, plain string) (*appctx.Actor, error) {
	parts := strings.Split(plain, "_")
	if len(parts) != 3 || parts[0] != keyPrefix {
		return nil, apperror.NewUnauthorized("malformed api key")
	}
	keyID, secret := parts[1], parts[2]

	key, err := s.repo.GetByKeyID(ctx, keyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("unknown api key")
		}
		return nil, err
	}
	if !key.IsActive {
		return nil, apperror.NewUnauthorized("api key revoked")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)); err != nil {
		return nil, apperror.NewUnauthorized("invalid api key")
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastUsed(ctx, key.ID, now); err != nil {
		logger.Warn(ctx, "touch api key last_used", "key_id", keyID, "error", err)
	}

	return &appctx.Actor{
		ID:          key.ID.String(),
		Name:        key.Name,
		Source:      appctx.SourceAPIKey,
		Permissions: key.Perms,
	}, nil
}

// List returns all keys, hashes omitted from serialization.
func (s *APIKeyService) List(ctx context.Context) ([]*APIKey, error) {
	return s.repo.List(ctx)
}

// Revoke deactivates a key. The key record stays for the audit trail.
func (s *APIKeyService) Revoke(ctx context.Context, keyID id.ID) error {
	if err := s.repo.Revoke(ctx, keyID); err != nil {
		return err
	}
	logger.Info(ctx, "api key revoked", "id", keyID)
	return nil
}

func validPermission(p string) bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
