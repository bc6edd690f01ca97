package report

import (
	"errors"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/postgres"
)

var (
	// ErrNotFound is returned when an area or a listing does not exist. An area
	// that exists but has no listings is not an error.
	ErrNotFound = areas.ErrNotFound
	// ErrInvalidFilterType is returned for an area type outside the known set.
	ErrInvalidFilterType = areas.ErrInvalidType
	// ErrInvalidParams is returned for unusable caller parameters.
	ErrInvalidParams = errors.New("invalid parameters")
)

// IsStoreFailure reports whether err came from the listing store.
func IsStoreFailure(err error) bool {
	var se *postgres.StoreError
	return errors.As(err, &se)
}

// errorKind is the metrics label for a failed call.
func errorKind(err error) string {
	var se *postgres.StoreError
	switch {
	case errors.As(err, &se):
		return string(se.Kind)
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidFilterType), errors.Is(err, ErrInvalidParams):
		return "invalid"
	default:
		return "other"
	}
}
