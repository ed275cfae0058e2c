// Package auth_repo provides PostgreSQL storage for API keys.
package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/auth"
	"almacen/internal/infrastructure/storage/postgres"
)

const apiKeysTable = "api_keys"

var apiKeyColumns = []string{
	"id", "name", "key_id", "secret_hash", "permissions",
	"is_active", "last_used_at", "created_at",
}

// APIKeyRepo implements auth.APIKeyRepository.
type APIKeyRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewAPIKeyRepo creates a new API key repository.
func NewAPIKeyRepo(txManager *postgres.TxManager) *APIKeyRepo {
	return &APIKeyRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new key record.
func (r *APIKeyRepo) Create(ctx context.Context, key *auth.APIKey) error {
	q := r.builder.Insert(apiKeysTable).
		Columns(apiKeyColumns...).
		Values(
			key.ID, key.Name, key.KeyID, key.SecretHash, key.Perms,
			key.IsActive, key.LastUsedAt, key.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate("api key", "key_id", key.KeyID)
		}
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// GetByKeyID retrieves a key by its public id part.
func (r *APIKeyRepo) GetByKeyID(ctx context.Context, keyID string) (*auth.APIKey, error) {
	q := r.builder.Select(apiKeyColumns...).
		From(apiKeysTable).
		Where(squirrel.Eq{"key_id": keyID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var key auth.APIKey
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &key, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("api key", keyID)
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return &key, nil
}

// List returns all keys, newest first.
func (r *APIKeyRepo) List(ctx context.Context) ([]*auth.APIKey, error) {
	q := r.builder.Select(apiKeyColumns...).
		From(apiKeysTable).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var keys []*auth.APIKey
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &keys, sql, args...); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// Revoke deactivates a key.
func (r *APIKeyRepo) Revoke(ctx context.Context, keyID id.ID) error {
	q := r.builder.Update(apiKeysTable).
		Set("is_active", false).
		Where(squirrel.Eq{"id": keyID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("api key", keyID.String())
	}
	return nil
}

// TouchLastUsed records key usage. Best effort, called outside any
// transaction.
func (r *APIKeyRepo) TouchLastUsed(ctx context.Context, keyID id.ID, at time.Time) error {
	q := r.builder.Update(apiKeysTable).
		Set("last_used_at", at).
		Where(squirrel.Eq{"id": keyID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}
