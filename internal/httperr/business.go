package httperr

import (
	"errors"
	"fmt"
	"time"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindForbidden    Kind = "forbidden"
)

type BusinessError struct {
	Code string
	Kind Kind
}

func (e BusinessError) Error() string {
	return e.Code
}

// ErrBusiness builds an invalid-input error. Use the kind-specific helpers
// when the caller needs a different HTTP mapping.
func ErrBusiness(code string) error {
	return BusinessError{Code: code, Kind: KindInvalidInput}
}

func ErrNotFound(code string) error {
	return BusinessError{Code: code, Kind: KindNotFound}
}

func ErrInvalidState(code string) error {
	return BusinessError{Code: code, Kind: KindInvalidState}
}

func ErrForbidden(code string) error {
	return BusinessError{Code: code, Kind: KindForbidden}
}

func ErrConflictCode(code string) error {
	return BusinessError{Code: code, Kind: KindConflict}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return kind == KindConflict
	}
	return false
}

// ConflictError reports that a candidate interval overlaps an active
// booking. BookingID is zero when the overlap was detected by the storage
// constraint and the competing row is unknown.
type ConflictError struct {
	BookingID uint
	Start     time.Time
	End       time.Time
}

func (e *ConflictError) Error() string {
	if e.BookingID == 0 {
		return "time_conflict"
	}
	return fmt.Sprintf(
		"time_conflict: booking %d [%s, %s)",
		e.BookingID,
		e.Start.Format(time.RFC3339),
		e.End.Format(time.RFC3339),
	)
}

const CodeTimeConflict = "time_conflict"
