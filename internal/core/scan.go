package core

// sqlScanner walks SQL text byte by byte, consuming string literals, quoted
// identifiers and comments as opaque units so that structural rewrites
// (shorthand expansion, placeholder rewriting, statement splitting) never
// touch their contents. Tracked states: single-quoted string, double-quoted
// identifier, backtick identifier, line comment, block comment.
type sqlScanner struct {
	src string
	i   int
	n   int
}

func newSQLScanner(src string) *sqlScanner {
	return &sqlScanner{src: src, n: len(src)}
}

func (s *sqlScanner) peek(k int) byte {
	if s.i+k < s.n {
		return s.src[s.i+k]
	}
	return 0
}

// skipNonSQL consumes a literal or comment starting at the current position
// and reports whether anything was consumed.
func (s *sqlScanner) skipNonSQL() bool {
	switch s.src[s.i] {
	case '\'':
		s.consumeQuoted('\'')
		return true
	case '"':
		s.consumeQuoted('"')
		return true
	case '`':
		s.consumeQuoted('`')
		return true
	case '-':
		if s.peek(1) == '-' {
			s.consumeLineComment()
			return true
		}
	case '/':
		if s.peek(1) == '*' {
			s.consumeBlockComment()
			return true
		}
	}
	return false
}

// consumeQuoted consumes a quoted run delimited by q. A doubled delimiter
// escapes itself. An unterminated run consumes the rest of the input.
func (s *sqlScanner) consumeQuoted(q byte) {
	s.i++
	for s.i < s.n {
		c := s.src[s.i]
		s.i++
		if c == q {
			if s.i < s.n && s.src[s.i] == q {
				s.i++
				continue
			}
			return
		}
	}
}

func (s *sqlScanner) consumeLineComment() {
	s.i += 2
	for s.i < s.n && s.src[s.i] != '\n' {
		s.i++
	}
}

func (s *sqlScanner) consumeBlockComment() {
	s.i += 2
	for s.i+1 < s.n {
		if s.src[s.i] == '*' && s.src[s.i+1] == '/' {
			s.i += 2
			return
		}
		s.i++
	}
	s.i = s.n
}

// isIdentStart reports whether b can start a parameter name.
func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		b == '_'
}

// isIdentChar reports whether b can continue a parameter name.
func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
