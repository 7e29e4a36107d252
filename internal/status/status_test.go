package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaTable_NoDuplicateValues(t *testing.T) {
	seen := map[int]Code{}
	for c := range metaTable {
		if other, ok := seen[int(c)]; ok {
			t.Fatalf("code value %d shared by %v and %v", int(c), c, other)
		}
		seen[int(c)] = c
	}
}

func TestCode_Meta(t *testing.T) {
	cases := []struct {
		code      Code
		retryable bool
		logError  bool
		category  Category
	}{
		{Success, false, false, CategorySuccess},
		{Internal, true, true, CategoryCommon},
		{RateLimited, true, false, CategoryResource},
		{ProviderError, false, true, CategoryProvider},
		{InvalidArguments, false, false, CategoryInput},
	}
	for _, tc := range cases {
		m := tc.code.Meta()
		assert.Equal(t, tc.retryable, m.Retryable, "%v retryable", tc.code)
		assert.Equal(t, tc.logError, m.LogError, "%v log_error", tc.code)
		assert.Equal(t, tc.category, m.Category, "%v category", tc.code)
	}
}

func TestCode_UnknownFallback(t *testing.T) {
	var bogus Code = 99_999
	assert.Equal(t, "Code(99999)", bogus.String())
	assert.Equal(t, CategoryCommon, bogus.Category())
	assert.False(t, bogus.Retryable())
}

func TestError_Wrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, NetworkError, "dial failed")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, NetworkError, CodeOf(err))
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "dial failed")
	assert.Contains(t, err.Error(), "boom")
}

func TestWrap_NilCausePropagatesNil(t *testing.T) {
	var err error = Wrap(nil, Internal, "should not happen")
	assert.NoError(t, err)
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, Unknown, CodeOf(errors.New("opaque")))
	assert.Equal(t, Success, CodeOf(nil))
}

func TestIsRetryable_NonStatusError(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("opaque")))
	assert.False(t, IsRetryable(nil))
}

func TestError_UnwrapChain(t *testing.T) {
	root := errors.New("root cause")
	mid := Wrap(root, IOError, "read failed")
	top := Wrapf(mid, Internal, "loading config %s", "app.yaml")

	assert.ErrorIs(t, top, root)
	assert.ErrorIs(t, top, mid)
	assert.Equal(t, Internal, CodeOf(top))

	var se *Error
	require.ErrorAs(t, top, &se)
	assert.Equal(t, Internal, se.Code)
}
