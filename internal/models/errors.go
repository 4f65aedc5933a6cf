package models

import (
	"errors"
	"fmt"
	"strings"
)

// Workflow error taxonomy. Every failure leaving the service layer wraps one
// of these sentinels so the HTTP layer can map it without string matching.
var (
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("forbidden")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrValidation        = errors.New("validation failed")
	ErrStorage           = errors.New("storage failure")
)

// IllegalTransitionError reports which edge was rejected and, for bulk
// operations, which records blocked the batch.
type IllegalTransitionError struct {
	Kind      RecordKind
	From      State
	To        State
	RecordIDs []string
}

func (e *IllegalTransitionError) Error() string {
	if len(e.RecordIDs) > 0 {
		return fmt.Sprintf("illegal transition %s -> %s for %s records: %s",
			e.From, e.To, e.Kind, strings.Join(e.RecordIDs, ", "))
	}
	return fmt.Sprintf("illegal transition %s -> %s for kind %s", e.From, e.To, e.Kind)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// RequestError is a caller mistake in the request itself (empty id list,
// unknown state name, bad pagination).
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *RequestError) Unwrap() error { return ErrValidation }

// StorageError wraps a durability-layer failure. The enclosing transaction
// has already been rolled back when one of these is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorage }
