package errkind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndKindOf(t *testing.T) {
	err := New(NoDataAvailable, "extract", "nothing for this range")
	require.Error(t, err)

	assert.Equal(t, NoDataAvailable, KindOf(err))
	assert.Contains(t, err.Error(), "no_data_available")
	assert.Contains(t, err.Error(), "extract")
	assert.Contains(t, err.Error(), "nothing for this range")
}

func TestWrapPreservesExistingKind(t *testing.T) {
	inner := New(AuthenticationFailed, "client.get", "bad cookie")
	outer := Wrap(TransportFailure, "scraper.Run", inner)

	// The original classification survives re-wrapping.
	assert.Equal(t, AuthenticationFailed, KindOf(outer))
	assert.True(t, errors.Is(outer, &Error{Kind: AuthenticationFailed}))
}

func TestWrapClassifiesPlainErrors(t *testing.T) {
	plain := fmt.Errorf("connection refused")
	wrapped := Wrap(TransportFailure, "client.get", plain)

	assert.Equal(t, TransportFailure, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, plain)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(TransportFailure, "op", nil))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(fmt.Errorf("who knows")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestIsKind(t *testing.T) {
	err := Newf(RateLimited, "client.get", "status %d", 429)

	assert.True(t, IsKind(err, RateLimited))
	assert.False(t, IsKind(err, TransportFailure))

	// Deeply wrapped classified errors are still found.
	nested := fmt.Errorf("fetching chunk 3: %w", err)
	assert.True(t, IsKind(nested, RateLimited))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(New(NoDataAvailable, "op", "empty")))

	for _, kind := range []Kind{
		InvalidDateFormat,
		InvalidDateRange,
		InvalidArgument,
		AuthenticationFailed,
		RateLimited,
		TransportFailure,
		UnexpectedResponseFormat,
		NoPriceDataAvailable,
	} {
		assert.False(t, IsRecoverable(New(kind, "op", "boom")), "kind %s", kind)
	}
	assert.False(t, IsRecoverable(fmt.Errorf("plain")))
}
