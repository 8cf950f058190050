package upstream

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "refurb/pkg/domain-errors"
)

func TestFailureMessage(t *testing.T) {
	const fallback = "Failed to delete product. Please try again."

	assert.Equal(t, "Product is locked by seller", FailureMessage(Rejected("Product is locked by seller"), fallback))
	assert.Equal(t, "Product is locked by seller",
		FailureMessage(fmt.Errorf("call: %w", Rejected("Product is locked by seller")), fallback))
	assert.Equal(t, fallback, FailureMessage(Rejected(""), fallback))
	assert.Equal(t, fallback, FailureMessage(errors.New("connection refused"), fallback))
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, dErrors.CodeNotFound, CodeFor(NotFound("Product not found")))
	assert.Equal(t, dErrors.CodeConflict, CodeFor(fmt.Errorf("wrapped: %w", InvalidState("already approved"))))
	assert.Equal(t, dErrors.CodeUnavailable, CodeFor(Rejected("seller suspended")))
	assert.Equal(t, dErrors.CodeUnavailable, CodeFor(errors.New("connection refused")))
	assert.Equal(t, "Product not found", FailureMessage(NotFound("Product not found"), "fallback"))
}
