package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))

	err := Wrap(ErrNetwork, "fetching catalog")
	require.Error(t, err)
	assert.Equal(t, "fetching catalog: network error", err.Error())
	assert.ErrorIs(t, err, ErrNetwork)

	err = Wrapf(ErrFilesystem, "writing %s", "a.json")
	assert.Equal(t, "writing a.json: filesystem error", err.Error())
	assert.ErrorIs(t, err, ErrFilesystem)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(ErrNetwork, nil))

	cause := context.DeadlineExceeded
	err := Classify(ErrTimeout, cause)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	already := fmt.Errorf("wrapped: %w", ErrNetwork)
	assert.Same(t, already, Classify(ErrNetwork, already))
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", ErrHTTPStatus("http://x", 503), true},
		{"timeout", Classify(ErrTimeout, context.DeadlineExceeded), true},
		{"malformed", ErrMissingField("catalog", "versions"), false},
		{"integrity", ErrSizeMismatch("a", 1, 2), false},
		{"filesystem", Wrap(ErrFilesystem, "disk full"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestHelpers(t *testing.T) {
	err := ErrVersionNotFoundWithID("1.99")
	assert.ErrorIs(t, err, ErrVersionNotFound)
	assert.Contains(t, err.Error(), `"1.99"`)

	err = ErrHTTPStatus("http://example.com/a", 404)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "unexpected status code: 404")

	err = ErrHashMismatch("/tmp/a", "aa", "bb")
	assert.ErrorIs(t, err, ErrIntegrityMismatch)
	assert.Contains(t, err.Error(), "expected sha1 aa, got bb")

	assert.ErrorIs(t, ErrInvalidLogLevelWithDetails("loud"), ErrInvalidLogLevel)
	assert.ErrorIs(t, ErrInvalidOutputFormatWithDetails("xml"), ErrInvalidOutputFormat)
	assert.ErrorIs(t, ErrInvalidOSValueWithDetails("plan9", []string{"linux"}), ErrInvalidOSValue)
}
