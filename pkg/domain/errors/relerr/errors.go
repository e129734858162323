// Package relerr is the error taxonomy of a release run.
//
// Each error type maps to one failure mode of the blue-green state machine,
// so callers (the orchestrator, the CLI exit-code mapping, the API handlers)
// can branch on errors.As without parsing messages.
package relerr

import (
	"errors"
	"fmt"

	xe "github.com/slotswap/slotswap/pkg/errors"
)

type wrappingError struct {
	message  string
	causedBy error
}

func as[E error](err error) bool {
	if err == nil {
		return false
	}
	p := new(E)
	return errors.As(err, p)
}

func format(e struct {
	message  string
	causedBy error
}) string {
	if e.causedBy == nil {
		return e.message
	}
	if e.message == "" {
		return fmt.Sprintf("caused by: %+v", e.causedBy)
	}

	return fmt.Sprintf("%s / caused by: %+v", e.message, e.causedBy)
}

// The active-slot record is missing or unreadable. Nothing has been mutated;
// the whole run is safe to retry once an operator has repaired the record.
type ErrStateUnavailable wrappingError

var AsStateUnavailable = as[*ErrStateUnavailable]

func NewStateUnavailable(message string) error {
	return xe.WrapAsOuter(&ErrStateUnavailable{message: message}, 1)
}

func NewStateUnavailableCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrStateUnavailable{message: message, causedBy: err}, 1)
}

func (e *ErrStateUnavailable) Error() string {
	return format(*e)
}

func (e *ErrStateUnavailable) Unwrap() error {
	return e.causedBy
}

// A cluster mutation was rejected before any traffic moved (malformed
// workload spec, admission refusal, a refused selector patch).
type ErrApply wrappingError

var AsApplyError = as[*ErrApply]

func NewApply(message string) error {
	return xe.WrapAsOuter(&ErrApply{message: message}, 1)
}

func NewApplyCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrApply{message: message, causedBy: err}, 1)
}

func (e *ErrApply) Error() string {
	return format(*e)
}

func (e *ErrApply) Unwrap() error {
	return e.causedBy
}

// The freshly deployed slot never became ready within its rollout budget.
// The broken slot is left in place for inspection; no traffic impact.
type ErrRolloutTimeout wrappingError

var AsRolloutTimeout = as[*ErrRolloutTimeout]

func NewRolloutTimeout(message string) error {
	return xe.WrapAsOuter(&ErrRolloutTimeout{message: message}, 1)
}

func NewRolloutTimeoutCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrRolloutTimeout{message: message, causedBy: err}, 1)
}

func (e *ErrRolloutTimeout) Error() string {
	return format(*e)
}

func (e *ErrRolloutTimeout) Unwrap() error {
	return e.causedBy
}

// Pre-switch health validation failed. No traffic impact.
type ErrValidationFailed wrappingError

var AsValidationFailed = as[*ErrValidationFailed]

func NewValidationFailed(message string) error {
	return xe.WrapAsOuter(&ErrValidationFailed{message: message}, 1)
}

func NewValidationFailedCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrValidationFailed{message: message, causedBy: err}, 1)
}

func (e *ErrValidationFailed) Error() string {
	return format(*e)
}

func (e *ErrValidationFailed) Unwrap() error {
	return e.causedBy
}

// Health validation failed after the traffic switch. Triggers the automatic
// rollback attempt.
type ErrPostSwitchFailure wrappingError

var AsPostSwitchFailure = as[*ErrPostSwitchFailure]

func NewPostSwitchFailure(message string) error {
	return xe.WrapAsOuter(&ErrPostSwitchFailure{message: message}, 1)
}

func NewPostSwitchFailureCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrPostSwitchFailure{message: message, causedBy: err}, 1)
}

func (e *ErrPostSwitchFailure) Error() string {
	return format(*e)
}

func (e *ErrPostSwitchFailure) Unwrap() error {
	return e.causedBy
}

// The rollback itself failed. Production traffic may be pointing at a broken
// slot; operators must intervene. This is the loudest failure mode.
type ErrRollbackFailed wrappingError

var AsRollbackFailed = as[*ErrRollbackFailed]

func NewRollbackFailed(message string) error {
	return xe.WrapAsOuter(&ErrRollbackFailed{message: message}, 1)
}

func NewRollbackFailedCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrRollbackFailed{message: message, causedBy: err}, 1)
}

func (e *ErrRollbackFailed) Error() string {
	return format(*e)
}

func (e *ErrRollbackFailed) Unwrap() error {
	return e.causedBy
}

// Concurrent mutation of the active-slot record outlasted the retry budget.
type ErrStateConflict wrappingError

var AsStateConflict = as[*ErrStateConflict]

func NewStateConflict(message string) error {
	return xe.WrapAsOuter(&ErrStateConflict{message: message}, 1)
}

func NewStateConflictCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrStateConflict{message: message, causedBy: err}, 1)
}

func (e *ErrStateConflict) Error() string {
	return format(*e)
}

func (e *ErrStateConflict) Unwrap() error {
	return e.causedBy
}

// Scaling the previous slot down failed after a successful switch.
// Non-fatal: the release still counts as a (degraded) success.
type ErrCleanupFailure wrappingError

var AsCleanupFailure = as[*ErrCleanupFailure]

func NewCleanupFailure(message string) error {
	return xe.WrapAsOuter(&ErrCleanupFailure{message: message}, 1)
}

func NewCleanupFailureCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrCleanupFailure{message: message, causedBy: err}, 1)
}

func (e *ErrCleanupFailure) Error() string {
	return format(*e)
}

func (e *ErrCleanupFailure) Unwrap() error {
	return e.causedBy
}

// The run was canceled from outside between state transitions.
var ErrCancelled = errors.New("release canceled")
