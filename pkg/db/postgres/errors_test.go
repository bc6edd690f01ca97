package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "deadline", err: fmt.Errorf("wrapped: %w", context.DeadlineExceeded), want: KindTimeout},
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "statement timeout", err: &pgconn.PgError{Code: "57014"}, want: KindTimeout},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, want: KindConnection},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: KindConnection},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, want: KindPool},
		{name: "invalid cast", err: &pgconn.PgError{Code: "22P02"}, want: KindQuery},
		{name: "unknown", err: errors.New("odd"), want: KindQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("test", tt.err)
			var se *StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.want, se.Kind)
			assert.Equal(t, "test", se.Op)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyKeepsExisting(t *testing.T) {
	original := &StoreError{Kind: KindPool, Op: "acquire", Err: errors.New("full")}
	assert.Same(t, original, Classify("other", fmt.Errorf("ctx: %w", original)))
	assert.NoError(t, Classify("nil", nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&StoreError{Kind: KindConnection}))
	assert.False(t, Retryable(&StoreError{Kind: KindPool}))
	assert.False(t, Retryable(&StoreError{Kind: KindQuery}))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("x")))
}

func TestClassifyPassesNoRowsThrough(t *testing.T) {
	err := Classify("listing", pgx.ErrNoRows)
	assert.Same(t, pgx.ErrNoRows, err)

	var se *StoreError
	assert.False(t, errors.As(err, &se))
	assert.False(t, Retryable(err))
}

func TestGetPoolConfigForComponent(t *testing.T) {
	t.Setenv("POSTGRES_MAX_CONNS", "")
	cfg := GetPoolConfigForComponent("query")
	assert.Equal(t, int32(20), cfg.MaxConns)
	assert.Equal(t, "query", cfg.Component)

	t.Setenv("POSTGRES_MAX_CONNS", "7")
	assert.Equal(t, int32(7), GetPoolConfigForComponent("cli").MaxConns)
}
