package xerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	base := New("base failure")

	wrapped := Wrap(base, "loading config")
	require.Error(t, wrapped)
	assert.Equal(t, "loading config: base failure", wrapped.Error())
	assert.True(t, errors.Is(wrapped, base))

	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWrapf(t *testing.T) {
	base := New("connection refused")

	wrapped := Wrapf(base, "redis connector[%s]", "default")
	require.Error(t, wrapped)
	assert.Equal(t, "redis connector[default]: connection refused", wrapped.Error())
	assert.True(t, errors.Is(wrapped, base))

	assert.Nil(t, Wrapf(nil, "ignored %d", 1))
}

func TestWithCode(t *testing.T) {
	base := New("stock is empty")

	coded := WithCode(base, "sold_out")
	require.Error(t, coded)
	assert.Equal(t, "sold_out", GetCode(coded))
	assert.True(t, errors.Is(coded, base))

	// 多层包装后仍能提取错误码
	outer := Wrap(coded, "purchase rejected")
	assert.Equal(t, "sold_out", GetCode(outer))

	assert.Nil(t, WithCode(nil, "ignored"))
}

func TestGetCode_NoCode(t *testing.T) {
	assert.Equal(t, "", GetCode(New("plain error")))
	assert.Equal(t, "", GetCode(nil))
}

func TestMust(t *testing.T) {
	assert.Equal(t, 42, Must(42, nil))
	assert.Panics(t, func() {
		Must(0, New("boom"))
	})
}
