package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// Sanitizer masks sensitive parameter values before they reach the log output.
// Detection is based on sensitive column names appearing in the SQL text.
type Sanitizer struct {
	maskValue string
	patterns  []*regexp.Regexp
}

// NewSanitizer creates a new sanitizer with the specified sensitive field names.
// If no fields are provided, a default set of common sensitive field names is used.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		sensitiveFields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for _, field := range sensitiveFields {
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(field) + `\b`)
		patterns = append(patterns, pattern)
	}

	return &Sanitizer{
		maskValue: "***REDACTED***",
		patterns:  patterns,
	}
}

// MaskParams returns a copy of params with sensitive values replaced by the
// mask value. The original slice is not modified. Masking applies to all
// parameters of a statement whose SQL references a sensitive field; the
// statement text is not parsed to find exact positions.
func (s *Sanitizer) MaskParams(sql string, params []any) []any {
	if len(params) == 0 || !s.containsSensitivePattern(sql) {
		return params
	}

	masked := make([]any, len(params))
	for i := range params {
		masked[i] = s.maskValue
	}
	return masked
}

// containsSensitivePattern checks if SQL contains any sensitive field patterns.
func (s *Sanitizer) containsSensitivePattern(sql string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(sql) {
			return true
		}
	}
	return false
}

// FormatParams converts parameters to a safe string representation for logging.
// Sensitive values should be masked using MaskParams before calling this.
func (s *Sanitizer) FormatParams(params []any) string {
	if len(params) == 0 {
		return "[]"
	}

	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = s.formatValue(p)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// formatValue formats a single parameter value for logging.
// Truncates very long strings to prevent log pollution.
func (s *Sanitizer) formatValue(v any) string {
	if v == nil {
		return "NULL"
	}

	str := fmt.Sprintf("%v", v)

	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}
