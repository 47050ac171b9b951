package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestComputeRPN(t *testing.T) {
	assert.Equal(t, 84, ComputeRPN(intPtr(7), intPtr(4), intPtr(3)))
	assert.Equal(t, 1000, ComputeRPN(intPtr(10), intPtr(10), intPtr(10)))
	assert.Equal(t, 1, ComputeRPN(intPtr(1), intPtr(1), intPtr(1)))
}

func TestComputeRPNMissingRating(t *testing.T) {
	// Any absent rating zeroes the product.
	assert.Equal(t, 0, ComputeRPN(intPtr(5), nil, intPtr(8)))
	assert.Equal(t, 0, ComputeRPN(nil, intPtr(5), intPtr(8)))
	assert.Equal(t, 0, ComputeRPN(intPtr(5), intPtr(8), nil))
	assert.Equal(t, 0, ComputeRPN(nil, nil, nil))
}

func TestFailureAnalysisPatchTouchesRatings(t *testing.T) {
	assert.False(t, FailureAnalysisPatch{}.TouchesRatings())
	assert.False(t, FailureAnalysisPatch{Cause: strPtr("vibration")}.TouchesRatings())
	assert.True(t, FailureAnalysisPatch{Occurrence: intPtr(10)}.TouchesRatings())
}

func strPtr(s string) *string { return &s }
