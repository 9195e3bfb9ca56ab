package model

import (
	"errors"
	"fmt"
)

var ErrClosed = errors.New("orchestrator is closed")

// InferenceError means the model call of a round failed. The round is
// abandoned; tool calls it may have produced are not run.
type InferenceError struct {
	Round int
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed in round %d: %v", e.Round, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// RoundLimitError means the model kept requesting tools past the round cap.
type RoundLimitError struct {
	Rounds int
}

func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("stopped after %d rounds without a final answer", e.Rounds)
}
