// Package errors provides the error taxonomy used across mindgauge.
//
// Every failure surfaced by the training pipeline or the serving path is one
// of the structured types below, so callers can route on kind (client input
// vs. model availability vs. training) instead of matching message strings.
// All constructors attach a stack trace via cockroachdb/errors.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ClientInputError reports a request payload that violates the inference
// contract: malformed JSON, an unknown shape, wrong feature arity, or a
// missing feature name. It always maps to an HTTP 4xx and is never retried.
type ClientInputError struct {
	Contract string // the violated contract, e.g. "arity", "shape", "feature set"
	Detail   string
}

func (e *ClientInputError) Error() string {
	return fmt.Sprintf("mindgauge: invalid input (%s): %s", e.Contract, e.Detail)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ClientInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("contract", e.Contract).
		Str("detail", e.Detail).
		Str("type", "ClientInputError")
}

// NewClientInputError creates a new ClientInputError with a stack trace.
func NewClientInputError(contract, detail string) error {
	err := &ClientInputError{Contract: contract, Detail: detail}
	return errors.WithStack(err)
}

// NewClientInputErrorf creates a new ClientInputError with a formatted detail.
func NewClientInputErrorf(contract, format string, args ...interface{}) error {
	return NewClientInputError(contract, fmt.Sprintf(format, args...))
}

// ModelUnavailableError reports that the serving model could not be
// materialized: the artifact location is empty, storage is unreachable, or
// the artifact fails to deserialize. It is fatal for the current request and
// maps to an HTTP 5xx; the store resets so a later request may retry.
type ModelUnavailableError struct {
	Location string
	Reason   string
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mindgauge: model unavailable at %s: %s: %v", e.Location, e.Reason, e.Err)
	}
	return fmt.Sprintf("mindgauge: model unavailable at %s: %s", e.Location, e.Reason)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ModelUnavailableError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("location", e.Location).
		Str("reason", e.Reason).
		Str("type", "ModelUnavailableError")
	if e.Err != nil {
		event.AnErr("cause", e.Err)
	}
}

// NewModelUnavailableError creates a new ModelUnavailableError with a stack trace.
func NewModelUnavailableError(location, reason string, err error) error {
	muErr := &ModelUnavailableError{Location: location, Reason: reason, Err: err}
	return errors.WithStack(muErr)
}

// TrainingError reports a failed training run: hyperparameter search found
// nothing or the final ensemble fit failed. There is no partial result; the
// caller must treat the run as fatal so downstream steps do not consume a
// missing model.
type TrainingError struct {
	Stage string // "tuning", "fit", "split", "artifacts"
	Err   error
}

func (e *TrainingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mindgauge: training failed during %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("mindgauge: training failed during %s", e.Stage)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *TrainingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", e.Stage).Str("type", "TrainingError")
	if e.Err != nil {
		event.AnErr("cause", e.Err)
	}
}

// NewTrainingError creates a new TrainingError with a stack trace.
func NewTrainingError(stage string, err error) error {
	trErr := &TrainingError{Stage: stage, Err: err}
	return errors.WithStack(trErr)
}

// EvaluationError reports that the evaluation step could not score the model,
// typically because one of the three training artifacts failed to
// deserialize. It is propagated, never silently scored as zero.
type EvaluationError struct {
	Artifact string // "model", "test features", "test labels"
	Err      error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mindgauge: evaluation failed on %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("mindgauge: evaluation failed on %s", e.Artifact)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *EvaluationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("artifact", e.Artifact).Str("type", "EvaluationError")
	if e.Err != nil {
		event.AnErr("cause", e.Err)
	}
}

// NewEvaluationError creates a new EvaluationError with a stack trace.
func NewEvaluationError(artifact string, err error) error {
	evErr := &EvaluationError{Artifact: artifact, Err: err}
	return errors.WithStack(evErr)
}

// DimensionError reports input whose dimensions differ from what an
// operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("mindgauge: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is out of range or otherwise
// unusable, e.g. a negative class count or an empty dataset.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("mindgauge: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Common error values.
var (
	// ErrEmptyData is returned when an operation receives no rows.
	ErrEmptyData = New("empty data")

	// ErrNoArtifact is returned when no model artifact matches at the
	// resolved storage location.
	ErrNoArtifact = New("no model artifact found")
)
