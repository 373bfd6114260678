package oerror

import (
	"errors"
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
)

var (
	// ErrConflict is matched by every ConflictError through errors.Is.
	ErrConflict = errors.New("portal region overlaps an existing portal")
	// ErrNoValidSite is matched by every NoValidSiteError through errors.Is.
	ErrNoValidSite = errors.New("no valid portal site")
	// ErrTransferFailed is matched by every TransferFailedError through errors.Is.
	ErrTransferFailed = errors.New("transfer failed")
)

// PortalError is a plain error carrying a formatted message. It is used for programming errors that
// are raised through panics, such as broken index invariants.
type PortalError struct {
	Err string
}

// New returns a new PortalError with the message formatted from the format and args passed.
func New(format string, args ...interface{}) *PortalError {
	return &PortalError{Err: fmt.Sprintf(format, args...)}
}

func (e *PortalError) Error() string {
	return e.Err
}

// ConflictError is returned when a portal is inserted into a region of a dimension that is already occupied by
// another portal.
type ConflictError struct {
	Dimension string
	// Existing is the region of the portal already present, Candidate the region that was rejected.
	Existing, Candidate [2]cube.Pos
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("portal region %v-%v in %s overlaps existing portal %v-%v",
		e.Candidate[0], e.Candidate[1], e.Dimension, e.Existing[0], e.Existing[1])
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NoValidSiteError is returned when no clear site for a new portal could be found within the search budget.
type NoValidSiteError struct {
	Dimension string
	Near      cube.Pos
	Attempts  int
}

func (e *NoValidSiteError) Error() string {
	return fmt.Sprintf("no valid portal site in %s near %v after %d attempts", e.Dimension, e.Near, e.Attempts)
}

func (e *NoValidSiteError) Is(target error) bool { return target == ErrNoValidSite }

// TransferFailedError is returned when an entity could not be transferred between two dimensions. The entity
// should be left at its original position by the caller.
type TransferFailedError struct {
	From, To string
	Err      error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("transfer from %s to %s failed: %v", e.From, e.To, e.Err)
}

func (e *TransferFailedError) Is(target error) bool { return target == ErrTransferFailed }

func (e *TransferFailedError) Unwrap() error { return e.Err }
