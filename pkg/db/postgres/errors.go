package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies a failure against the relational store.
type ErrorKind string

const (
	KindPool       ErrorKind = "pool"
	KindConnection ErrorKind = "connection"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindQuery      ErrorKind = "query"
)

// StoreError is a transient or execution failure against the store. Its
// message is meant for logs; HTTP callers only ever see a generic message.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Classify wraps err in a *StoreError. nil stays nil, an existing
// *StoreError is returned unchanged and pgx.ErrNoRows passes through, since
// an empty result is not a store failure.
func Classify(op string, err error) error {
	if err == nil || IsNoRows(err) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	return &StoreError{Kind: kindOf(err), Op: op, Err: err}
}

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return KindTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "57014":
			return KindTimeout
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "57P01", pgErr.Code == "57P03":
			return KindConnection
		case pgErr.Code == "53300":
			return KindPool
		}
		return KindQuery
	}

	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.SafeToRetry(err) {
		return KindConnection
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return KindConnection
	}
	return KindQuery
}

// Retryable reports whether a read can safely be attempted again.
func Retryable(err error) bool {
	var se *StoreError
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == KindConnection
}

// IsNoRows checks if the error is a "no rows" error
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
