package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_MaskParams(t *testing.T) {
	s := NewSanitizer(nil)

	t.Run("sensitive SQL masks all params", func(t *testing.T) {
		masked := s.MaskParams("UPDATE user SET password = ? WHERE id = ?", []any{"hunter2", 7})
		assert.Equal(t, []any{"***REDACTED***", "***REDACTED***"}, masked)
	})

	t.Run("non-sensitive SQL passes through", func(t *testing.T) {
		params := []any{"alice", 7}
		masked := s.MaskParams("UPDATE user SET name = ? WHERE id = ?", params)
		assert.Equal(t, params, masked)
	})

	t.Run("field name match is word bounded", func(t *testing.T) {
		masked := s.MaskParams("SELECT * FROM authors WHERE id = ?", []any{1})
		assert.Equal(t, []any{1}, masked)
	})

	t.Run("detection is case insensitive", func(t *testing.T) {
		masked := s.MaskParams("UPDATE user SET PASSWORD = ?", []any{"x"})
		assert.Equal(t, []any{"***REDACTED***"}, masked)
	})

	t.Run("empty params", func(t *testing.T) {
		assert.Empty(t, s.MaskParams("UPDATE user SET password = 'x'", nil))
	})
}

func TestSanitizer_CustomFields(t *testing.T) {
	s := NewSanitizer([]string{"pin_code"})

	assert.Equal(t, []any{"***REDACTED***"},
		s.MaskParams("UPDATE card SET pin_code = ?", []any{"1234"}))
	assert.Equal(t, []any{"x"},
		s.MaskParams("UPDATE user SET password = ?", []any{"x"}))
}

func TestSanitizer_FormatParams(t *testing.T) {
	s := NewSanitizer(nil)

	assert.Equal(t, "[]", s.FormatParams(nil))
	assert.Equal(t, "[alice, 7, NULL]", s.FormatParams([]any{"alice", 7, nil}))

	long := strings.Repeat("a", 150)
	formatted := s.FormatParams([]any{long})
	assert.Equal(t, "["+strings.Repeat("a", 100)+"...]", formatted)
}
