// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xmlrepair

import "strings"

// fillBareAttributes walks start tags and gives every attribute that
// has no value the value "true". Two corrupt shapes occur: a name with
// a stray closing quote (accent"/>) and a bare name (accent/>). Quoted
// values, comments, CDATA sections, processing instructions and text
// are copied through untouched.
func fillBareAttributes(text string) (string, int) {
	if !strings.Contains(text, "<") {
		return text, 0
	}

	var out strings.Builder
	out.Grow(len(text) + 64)
	count := 0
	position := 0
	for position < len(text) {
		next := strings.IndexByte(text[position:], '<')
		if next < 0 {
			out.WriteString(text[position:])
			break
		}
		out.WriteString(text[position : position+next])
		position += next

		rest := text[position:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			position += copyThrough(&out, rest, "-->")
		case strings.HasPrefix(rest, "<![CDATA["):
			position += copyThrough(&out, rest, "]]>")
		case strings.HasPrefix(rest, "<?"):
			position += copyThrough(&out, rest, "?>")
		case len(rest) > 1 && isNameStart(rest[1]):
			consumed, hits := scanStartTag(&out, rest)
			position += consumed
			count += hits
		default:
			out.WriteByte('<')
			position++
		}
	}
	if count == 0 {
		return text, 0
	}
	return out.String(), count
}

// copyThrough copies s up to and including terminator, or all of s if
// the terminator never appears, and returns the bytes consumed.
func copyThrough(out *strings.Builder, s, terminator string) int {
	end := strings.Index(s, terminator)
	if end < 0 {
		out.WriteString(s)
		return len(s)
	}
	end += len(terminator)
	out.WriteString(s[:end])
	return end
}

// scanStartTag copies one start tag beginning at s[0] == '<' and
// returns the bytes consumed and the number of attributes filled in.
func scanStartTag(out *strings.Builder, s string) (int, int) {
	hits := 0
	position := 1
	for position < len(s) && isNameChar(s[position]) {
		position++
	}
	out.WriteString(s[:position])

	for position < len(s) {
		c := s[position]
		switch {
		case c == '>':
			out.WriteByte(c)
			return position + 1, hits

		case isNameStart(c):
			start := position
			for position < len(s) && isNameChar(s[position]) {
				position++
			}
			out.WriteString(s[start:position])

			equals := position
			for equals < len(s) && isSpace(s[equals]) {
				equals++
			}
			if equals < len(s) && s[equals] == '=' {
				out.WriteString(s[position : equals+1])
				position = equals + 1
				for position < len(s) && isSpace(s[position]) {
					out.WriteByte(s[position])
					position++
				}
				if position < len(s) && (s[position] == '"' || s[position] == '\'') {
					closing := strings.IndexByte(s[position+1:], s[position])
					if closing < 0 {
						out.WriteString(s[position:])
						return len(s), hits
					}
					end := position + closing + 2
					out.WriteString(s[position:end])
					position = end
				}
				continue
			}

			if position < len(s) && s[position] == '"' {
				position++
			}
			out.WriteString(`="true"`)
			hits++

		default:
			out.WriteByte(c)
			position++
		}
	}
	return position, hits
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == ':'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9' || c == '-' || c == '.'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
