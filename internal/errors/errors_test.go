package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchingByType(t *testing.T) {
	err := DeadlineError("fanout")
	assert.True(t, stderrors.Is(err, &Error{Type: ErrorTypeDeadline}))
	assert.False(t, stderrors.Is(err, &Error{Type: ErrorTypeProvider}))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ProviderError(cause, "search request failed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "search request failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeProvider, SeverityLow, "ignored"))
}

func TestSeverityGates(t *testing.T) {
	assert.True(t, ConfigError("missing key").IsFatal())
	assert.False(t, StrategyError("bad strategy").IsFatal())
	assert.False(t, EmptyPoolError("c1").IsFatal())
}

func TestWithContextInDetailedString(t *testing.T) {
	err := DeadlineError("dual_evaluation").WithContext("claim_id", "c1")
	s := err.DetailedString()
	assert.Contains(t, s, "DEADLINE")
	assert.Contains(t, s, "stage=dual_evaluation")
	assert.Contains(t, s, "claim_id=c1")
}
