package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckforge/deckforge/core"
)

// Shape tells ExtractJSON which top-level JSON value the caller needs,
// since a reply may contain both an object and an array substring.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

// ParseError reports where JSON extraction failed in the original
// reply, for logging and for the Strategist's fatal-surface path.
type ParseError struct {
	Reason string
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llm: json extraction failed: %s (offset %d)", e.Reason, e.Offset)
}

func (e *ParseError) Unwrap() error { return core.ErrMalformedJSON }

// ExtractJSON implements spec.md §4.1.1's five-step procedure: strip
// one layer of code fencing, locate the first balanced bracket
// substring of the requested shape, parse it, and on failure attempt
// one remediation pass before giving up.
func ExtractJSON(reply string, shape Shape) (json.RawMessage, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, &ParseError{Reason: "empty", Offset: 0}
	}

	body := stripFence(reply)

	open, close := byte('{'), byte('}')
	if shape == ShapeArray {
		open, close = '[', ']'
	}

	candidate, start, ok := firstBalancedSubstring(body, open, close)
	dangling := false
	if !ok && shape == ShapeArray {
		candidate, start, ok = firstBalancedSubstring(body, '{', '}')
		dangling = ok
	}
	if !ok {
		return nil, &ParseError{Reason: "no balanced substring found", Offset: 0}
	}

	var raw json.RawMessage
	if !dangling {
		if err := json.Unmarshal([]byte(candidate), &raw); err == nil {
			return raw, nil
		}
	}

	remediated := remediate(candidate, shape)
	if err := json.Unmarshal([]byte(remediated), &raw); err == nil {
		return raw, nil
	}

	return nil, &ParseError{Reason: "invalid json after remediation", Offset: start}
}

// stripFence removes exactly one layer of ``` or ```json fencing, if
// present, leaving the interior untouched.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return trimmed
}

// firstBalancedSubstring scans s for the first substring starting at
// `open` and ending at its matching `close`, tracking depth and
// ignoring brackets inside quoted strings.
func firstBalancedSubstring(s string, open, close byte) (string, int, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if start == -1 {
			if c == open {
				start = i
				depth = 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], start, true
			}
		}
	}

	return "", 0, false
}

// remediate applies the one allowed repair pass: escaping stray
// unescaped double quotes inside already-quoted strings, and (for an
// array shape) wrapping a dangling bare object in brackets.
func remediate(candidate string, shape Shape) string {
	repaired := escapeStrayQuotes(candidate)
	if shape == ShapeArray && strings.HasPrefix(strings.TrimSpace(repaired), "{") {
		repaired = "[" + repaired + "]"
	}
	return repaired
}

// escapeStrayQuotes is a best-effort pass that cannot distinguish a
// legitimate string terminator from a stray embedded quote with full
// precision; it escapes quotes that are followed by a non-delimiter
// character while still inside what looks like an open string.
func escapeStrayQuotes(s string) string {
	var b strings.Builder
	inString := false
	escaped := false

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if !inString {
			b.WriteRune(c)
			if c == '"' {
				inString = true
			}
			continue
		}

		if escaped {
			b.WriteRune(c)
			escaped = false
			continue
		}

		if c == '\\' {
			b.WriteRune(c)
			escaped = true
			continue
		}

		if c == '"' {
			next := nextNonSpace(runes, i+1)
			if next == 0 || strings.ContainsRune(",:}]", next) {
				inString = false
				b.WriteRune(c)
			} else {
				b.WriteString(`\"`)
			}
			continue
		}

		b.WriteRune(c)
	}

	return b.String()
}

func nextNonSpace(runes []rune, from int) rune {
	for i := from; i < len(runes); i++ {
		if runes[i] != ' ' && runes[i] != '\t' && runes[i] != '\n' && runes[i] != '\r' {
			return runes[i]
		}
	}
	return 0
}
