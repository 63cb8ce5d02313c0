package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"validation", NewValidation("config.Load", "bad value", nil), ErrValidation},
		{"unknown method", NewUnknownMethod("foo", []string{"baseline"}), ErrUnknownMethod},
		{"external", NewExternal("oracle.Compare", "openai", "request failed", cause), ErrExternal},
		{"biz", NewBiz("prompts.Render", "render failed", nil), ErrBiz},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, Is(wrapped, tt.target))
			for _, other := range []error{ErrValidation, ErrUnknownMethod, ErrExternal, ErrBiz} {
				if other != tt.target {
					assert.False(t, Is(wrapped, other))
				}
			}
		})
	}

	assert.True(t, Is(NewExternal("op", "", "msg", cause), cause), "falls back to errors.Is")
	assert.False(t, Is(nil, ErrValidation))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, `unknown similarity method "foo" (available: a, b)`,
		NewUnknownMethod("foo", []string{"a", "b"}).Error())
	assert.Equal(t, `unknown similarity method "foo"`, NewUnknownMethod("foo", nil).Error())
	assert.Equal(t, "validation: op: msg", NewValidation("op", "msg", nil).Error())
	assert.Equal(t, "external: op: msg: boom", NewExternal("op", "", "msg", errors.New("boom")).Error())
	assert.Equal(t, "openai: op: msg", NewExternal("op", "openai", "msg", nil).Error())
}
