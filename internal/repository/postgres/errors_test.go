package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestErrorClassifiers(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("query: %w", &pgconn.PgError{Code: code})
	}

	cases := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"unique violation", wrap("23505"), IsPgDuplicateError, true},
		{"other code is not duplicate", wrap("23503"), IsPgDuplicateError, false},
		{"plain error is not duplicate", errors.New("boom"), IsPgDuplicateError, false},
		{"no rows", fmt.Errorf("get: %w", pgx.ErrNoRows), IsPgNoRowsError, true},
		{"invalid uuid", wrap("22P02"), IsPgInvalidTextError, true},
		{"check violation", wrap("23514"), IsPgCheckViolation, true},
		{"nil", nil, IsPgCheckViolation, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.check(tc.err); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
