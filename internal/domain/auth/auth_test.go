package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "owner@example.com", true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("token already expired")
	}

	actor, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if actor.ID != "user-1" || actor.Name != "owner@example.com" {
		t.Errorf("actor = %+v", actor)
	}
	if actor.Source != appctx.SourceSession {
		t.Errorf("source = %s", actor.Source)
	}
	if !actor.IsAdmin {
		t.Error("admin flag lost")
	}
}

func TestJWT_WrongSecretRejected(t *testing.T) {
	token, _, err := NewJWTService(DefaultJWTConfig("secret-a")).
		GenerateAccessToken("user-1", "a@example.com", false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewJWTService(DefaultJWTConfig("secret-b")).ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

type memKeyRepo struct {
	byKeyID map[string]*APIKey
}

func newMemKeyRepo() *memKeyRepo {
	return &memKeyRepo{byKeyID: make(map[string]*APIKey)}
}

func (r *memKeyRepo) Create(ctx context.Context, key *APIKey) error {
	cp := *key
	r.byKeyID[key.KeyID] = &cp
	return nil
}

func (r *memKeyRepo) GetByKeyID(ctx context.Context, keyID string) (*APIKey, error) {
	k, ok := r.byKeyID[keyID]
	if !ok {
		return nil, apperror.NewNotFound("api key", keyID)
	}
	return k, nil
}

func (r *memKeyRepo) List(ctx context.Context) ([]*APIKey, error) {
	var out []*APIKey
	for _, k := range r.byKeyID {
		out = append(out, k)
	}
	return out, nil
}

func (r *memKeyRepo) Revoke(ctx context.Context, keyID id.ID) error {
	for _, k := range r.byKeyID {
		if k.ID == keyID {
			k.IsActive = false
			return nil
		}
	}
	return apperror.NewNotFound("api key", keyID.String())
}

func (r *memKeyRepo) TouchLastUsed(ctx context.Context, keyID id.ID, at time.Time) error {
	for _, k := range r.byKeyID {
		if k.ID == keyID {
			k.LastUsedAt = &at
			return nil
		}
	}
	return nil
}

func TestAPIKey_IssueAndAuthenticate(t *testing.T) {
	repo := newMemKeyRepo()
	svc := NewAPIKeyService(repo)
	ctx := context.Background()

	key, plain, err := svc.Issue(ctx, "mobile assistant", []string{PermCreateSale, PermReadStock})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(plain, "mk_"+key.KeyID+"_") {
		t.Errorf("plain key format: %q", plain)
	}
	if strings.Contains(key.SecretHash, strings.Split(plain, "_")[2]) {
		t.Error("secret stored in clear")
	}

	actor, err := svc.Authenticate(ctx, plain)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if actor.Source != appctx.SourceAPIKey {
		t.Errorf("source = %s", actor.Source)
	}
	if !actor.HasPermission(PermCreateSale) || actor.HasPermission(PermCreatePayment) {
		t.Errorf("permissions = %v", actor.Permissions)
	}
	if repo.byKeyID[key.KeyID].LastUsedAt == nil {
		t.Error("last_used not touched")
	}
}

func TestAPIKey_RejectsBadKeys(t *testing.T) {
	repo := newMemKeyRepo()
	svc := NewAPIKeyService(repo)
	ctx := context.Background()

	key, plain, err := svc.Issue(ctx, "assistant", []string{PermReadStock})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name string
		key  string
	}{
		{"malformed", "not-a-key"},
		{"wrong prefix", strings.Replace(plain, "mk_", "xx_", 1)},
		{"unknown key id", "mk_deadbeef_deadbeef"},
		{"wrong secret", "mk_" + key.KeyID + "_deadbeef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Authenticate(ctx, tt.key); err == nil {
				t.Fatal("bad key accepted")
			}
		})
	}

	if err := svc.Revoke(ctx, key.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Authenticate(ctx, plain); err == nil {
		t.Fatal("revoked key accepted")
	}
}

func TestAPIKey_UnknownPermissionRejected(t *testing.T) {
	svc := NewAPIKeyService(newMemKeyRepo())
	_, _, err := svc.Issue(context.Background(), "bad", []string{"drop_tables"})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Fatalf("got %v, want validation error", err)
	}
}
