package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("delivery")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivery, s)

	_, err = ParseStatus("lost-in-mail")
	var usErr *UnknownStatusError
	require.ErrorAs(t, err, &usErr)
	assert.Equal(t, "lost-in-mail", usErr.Code)
}

func TestCanTransition_ForwardOnly(t *testing.T) {
	assert.True(t, StatusWait.CanTransition(StatusPaid))
	assert.True(t, StatusPaid.CanTransition(StatusDelivery))
	assert.True(t, StatusDelivery.CanTransition(StatusCompleted))
	assert.True(t, StatusCompleted.CanTransition(StatusReturned))

	// No going backwards.
	assert.False(t, StatusPaid.CanTransition(StatusWait))
	assert.False(t, StatusDelivery.CanTransition(StatusPaid))

	// No skipping ahead.
	assert.False(t, StatusWait.CanTransition(StatusDelivery))
	assert.False(t, StatusWait.CanTransition(StatusCompleted))
}

func TestCanTransition_TerminalStates(t *testing.T) {
	for _, terminal := range []Status{StatusReturned, StatusCancelled} {
		for _, next := range []Status{StatusWait, StatusPaid, StatusDelivery, StatusCompleted, StatusReturned, StatusCancelled} {
			assert.False(t, terminal.CanTransition(next), "%s -> %s", terminal, next)
		}
	}
}

func TestCanTransition_Cancellation(t *testing.T) {
	assert.True(t, StatusWait.CanTransition(StatusCancelled))
	assert.True(t, StatusPaid.CanTransition(StatusCancelled))
	assert.False(t, StatusDelivery.CanTransition(StatusCancelled))
}

func TestParseDetailStatus(t *testing.T) {
	s, err := ParseDetailStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, DetailStatusConfirmed, s)

	_, err = ParseDetailStatus("nope")
	var usErr *UnknownStatusError
	require.ErrorAs(t, err, &usErr)
}
