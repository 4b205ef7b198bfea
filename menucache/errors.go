package menucache

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-menu-cache/store"
)

var (
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with existing data.
	ErrConflict = errors.New("conflict")
	// ErrExportUnavailable is returned when no exporter is configured or it
	// refuses new jobs.
	ErrExportUnavailable = errors.New("export unavailable")
)

// NotFoundError names the kind of entity that could not be found.
type NotFoundError struct {
	Kind string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(kind string) error {
	return &NotFoundError{Kind: kind}
}

// mapStoreError translates store sentinels into service errors. kind names
// the entity reported when the store has nothing under the requested id.
func mapStoreError(kind string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFound(kind)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
