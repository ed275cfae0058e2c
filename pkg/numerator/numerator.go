// Package numerator provides sequential receipt numbering for ledger
// documents (sales and cash closings).
//
// Numbers are drawn from a per-prefix, per-year row in sys_sequences
// with UPDATE ... RETURNING, which guarantees gapless sequences as long
// as the draw happens inside the document's transaction.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the minimal database interface the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves a Querier from context so the numerator follows
// the caller's open transaction.
type QuerierFunc func(ctx context.Context) Querier

// Config describes a number series.
type Config struct {
	// Prefix of generated numbers, e.g. "V" for sales ("V-2026-000123").
	Prefix string

	// Digits is the zero-padded width of the sequence part.
	Digits int
}

// DefaultConfig returns the standard series config for a prefix.
func DefaultConfig(prefix string) Config {
	return Config{Prefix: prefix, Digits: 6}
}

// Service generates document numbers.
type Service struct {
	querierFn QuerierFunc
}

// New creates a numerator backed by the given querier resolver.
func New(querierFn QuerierFunc) *Service {
	return &Service{querierFn: querierFn}
}

// NextNumber draws the next number for the series and formats it as
// PREFIX-YEAR-NNNNNN. The sequence resets each calendar year.
func (s *Service) NextNumber(ctx context.Context, cfg Config, at time.Time) (string, error) {
	key := fmt.Sprintf("%s_%d", cfg.Prefix, at.Year())

	const q = `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val`

	var current int64
	if err := s.querierFn(ctx).QueryRow(ctx, q, key).Scan(&current); err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return FormatNumber(cfg, at.Year(), current), nil
}

// FormatNumber renders a drawn sequence value as a document number.
func FormatNumber(cfg Config, year int, val int64) string {
	digits := cfg.Digits
	if digits <= 0 {
		digits = 6
	}
	return fmt.Sprintf("%s-%d-%0*d", cfg.Prefix, year, digits, val)
}
