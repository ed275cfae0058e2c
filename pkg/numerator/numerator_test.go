package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	current int64
	lastKey string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if len(args) > 0 {
		if key, ok := args[0].(string); ok {
			m.lastKey = key
		}
	}
	m.current++
	return &mockRow{val: m.current}
}

func TestNextNumber_FormatAndKey(t *testing.T) {
	q := &mockQuerier{}
	svc := New(func(ctx context.Context) Querier { return q })

	at := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	got, err := svc.NextNumber(context.Background(), DefaultConfig("V"), at)
	if err != nil {
		t.Fatalf("NextNumber failed: %v", err)
	}
	if got != "V-2026-000001" {
		t.Errorf("unexpected number: %s", got)
	}
	if q.lastKey != "V_2026" {
		t.Errorf("unexpected sequence key: %s", q.lastKey)
	}

	got, err = svc.NextNumber(context.Background(), DefaultConfig("V"), at)
	if err != nil {
		t.Fatalf("NextNumber failed: %v", err)
	}
	if got != "V-2026-000002" {
		t.Errorf("sequence did not advance: %s", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		cfg  Config
		year int
		val  int64
		want string
	}{
		{DefaultConfig("CC"), 2026, 42, "CC-2026-000042"},
		{Config{Prefix: "V", Digits: 4}, 2025, 7, "V-2025-0007"},
		{Config{Prefix: "X"}, 2026, 1, "X-2026-000001"}, // zero digits falls back to 6
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.cfg, tt.year, tt.val); got != tt.want {
			t.Errorf("FormatNumber(%v, %d, %d) = %s, want %s", tt.cfg, tt.year, tt.val, got, tt.want)
		}
	}
}
