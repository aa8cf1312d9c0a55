package completion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billsage/internal/completion"
	"billsage/internal/port"
	"billsage/mocks"
)

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := new(mocks.MockCompletionClient)
	secondary := new(mocks.MockCompletionClient)
	primary.On("Complete", mock.Anything, mock.Anything).Return("primary output", nil)

	f := completion.NewFallbackClient(
		[]port.CompletionClient{primary, secondary},
		[]string{"openai", "anthropic"},
	)

	out, err := f.Complete(context.Background(), port.CompletionRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "primary output", out)
	secondary.AssertNumberOfCalls(t, "Complete", 0)
}

func TestFallback_SecondaryTakesOver(t *testing.T) {
	primary := new(mocks.MockCompletionClient)
	secondary := new(mocks.MockCompletionClient)
	primary.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("boom"))
	secondary.On("Complete", mock.Anything, mock.Anything).Return("secondary output", nil)

	f := completion.NewFallbackClient(
		[]port.CompletionClient{primary, secondary},
		[]string{"openai", "anthropic"},
	)

	out, err := f.Complete(context.Background(), port.CompletionRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "secondary output", out)
}

func TestFallback_AllFail(t *testing.T) {
	primary := new(mocks.MockCompletionClient)
	secondary := new(mocks.MockCompletionClient)
	primary.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("primary down"))
	secondary.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("secondary down"))

	f := completion.NewFallbackClient(
		[]port.CompletionClient{primary, secondary},
		[]string{"openai", "anthropic"},
	)

	_, err := f.Complete(context.Background(), port.CompletionRequest{User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all completion providers failed")
}

func TestFallback_RateLimitOpensCircuit(t *testing.T) {
	primary := new(mocks.MockCompletionClient)
	secondary := new(mocks.MockCompletionClient)
	primary.On("Complete", mock.Anything, mock.Anything).
		Return("", completion.NewRateLimitError("openai", errors.New("429"), 60))
	secondary.On("Complete", mock.Anything, mock.Anything).Return("ok", nil)

	f := completion.NewFallbackClient(
		[]port.CompletionClient{primary, secondary},
		[]string{"openai", "anthropic"},
	)

	// First call trips the primary circuit and falls through
	out, err := f.Complete(context.Background(), port.CompletionRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	// Second call skips the primary entirely while its circuit is open
	out, err = f.Complete(context.Background(), port.CompletionRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	primary.AssertNumberOfCalls(t, "Complete", 1)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, completion.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, completion.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 45, completion.ParseRetryAfterHeader("45"))
}
