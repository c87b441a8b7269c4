package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewClientInputError(t *testing.T) {
	tests := []struct {
		name     string
		contract string
		detail   string
		wantMsg  string
	}{
		{
			name:     "arity violation",
			contract: "arity",
			detail:   "expected 55 features, got 10",
			wantMsg:  "mindgauge: invalid input (arity): expected 55 features, got 10",
		},
		{
			name:     "shape violation",
			contract: "shape",
			detail:   "payload must carry features or instances",
			wantMsg:  "mindgauge: invalid input (shape): payload must carry features or instances",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewClientInputError(tt.contract, tt.detail)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var clientErr *ClientInputError
			if !As(err, &clientErr) {
				t.Error("Error should be castable to *ClientInputError")
			}
			if clientErr.Contract != tt.contract {
				t.Errorf("Contract = %v, want %v", clientErr.Contract, tt.contract)
			}
		})
	}
}

func TestNewModelUnavailableError(t *testing.T) {
	cause := New("connection refused")
	err := NewModelUnavailableError("s3://bucket/models/", "listing failed", cause)

	want := "mindgauge: model unavailable at s3://bucket/models/: listing failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var muErr *ModelUnavailableError
	if !As(err, &muErr) {
		t.Error("Error should be castable to *ModelUnavailableError")
	}
	if !Is(err, cause) {
		t.Error("Error should unwrap to its cause")
	}
}

func TestNewTrainingError(t *testing.T) {
	err := NewTrainingError("tuning", New("no candidate finished"))

	want := "mindgauge: training failed during tuning: no candidate finished"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var trErr *TrainingError
	if !As(err, &trErr) {
		t.Error("Error should be castable to *TrainingError")
	}
	if trErr.Stage != "tuning" {
		t.Errorf("Stage = %v, want tuning", trErr.Stage)
	}
}

func TestNewEvaluationError(t *testing.T) {
	err := NewEvaluationError("test labels", New("gob: corrupt stream"))

	var evErr *EvaluationError
	if !As(err, &evErr) {
		t.Error("Error should be castable to *EvaluationError")
	}
	if evErr.Artifact != "test labels" {
		t.Errorf("Artifact = %v, want test labels", evErr.Artifact)
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("PredictProba", 58, 55, 1)

	want := "mindgauge: PredictProba: dimension mismatch on axis 1 (features). Expected 58, got 55"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("StratifiedSplit", "fractions must leave a test remainder")

	want := "mindgauge: StratifiedSplit: fractions must leave a test remainder"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValueError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValueError")
	}
}

func TestWrapPreservesType(t *testing.T) {
	inner := NewClientInputError("arity", "short row")
	wrapped := Wrapf(inner, "instance %d", 3)

	var clientErr *ClientInputError
	if !As(wrapped, &clientErr) {
		t.Error("Wrapped error should still match *ClientInputError")
	}
	if !strings.Contains(wrapped.Error(), "instance 3") {
		t.Errorf("wrapped message = %v, want instance prefix", wrapped.Error())
	}
}
