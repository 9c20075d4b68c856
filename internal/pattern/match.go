package pattern

import (
	"strings"
	"unicode"
)

// Flags alter matching behavior. Each flag is independent.
type Flags uint8

const (
	// CaseFold makes literal and class comparisons case-insensitive.
	CaseFold Flags = 1 << iota
	// Pathname prevents wildcards and classes from matching "/".
	Pathname
	// Period requires a leading period (at the start of the string, or after
	// a "/" in Pathname mode) to be matched by a literal ".".
	Period
	// NoEscape disables backslash escaping in the pattern.
	NoEscape
)

// Match reports whether name matches pattern under the given flags.
func Match(pattern, name string, flags Flags) bool {
	return matchAt([]rune(pattern), []rune(name), 0, 0, flags)
}

// HasMeta reports whether s contains unescaped glob metacharacters.
func HasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[':
			return true
		case '\\':
			i++
		}
	}
	return false
}

func matchAt(p, s []rune, pi, si int, flags Flags) bool {
	for pi < len(p) {
		c := p[pi]
		switch c {
		case '?':
			if si >= len(s) {
				return false
			}
			if s[si] == '/' && flags&Pathname != 0 {
				return false
			}
			if leadingDot(s, si, flags) {
				return false
			}
			pi++
			si++

		case '*':
			for pi < len(p) && p[pi] == '*' {
				pi++
			}
			if leadingDot(s, si, flags) {
				return false
			}
			if pi == len(p) {
				if flags&Pathname != 0 {
					for _, r := range s[si:] {
						if r == '/' {
							return false
						}
					}
				}
				return true
			}
			// Try every split point. In pathname mode the star stops at a
			// slash: the rest of the pattern must take over there.
			for k := si; ; k++ {
				if matchAt(p, s, pi, k, flags) {
					return true
				}
				if k >= len(s) {
					return false
				}
				if s[k] == '/' && flags&Pathname != 0 {
					return false
				}
			}

		case '[':
			if si >= len(s) {
				return false
			}
			if s[si] == '/' && flags&Pathname != 0 {
				return false
			}
			if leadingDot(s, si, flags) {
				return false
			}
			ok, next := matchClass(p, pi, s[si], flags)
			if next < 0 {
				// Unterminated class: "[" is a literal.
				if !runeEq('[', s[si], flags) {
					return false
				}
				pi++
				si++
				continue
			}
			if !ok {
				return false
			}
			pi = next
			si++

		case '\\':
			if flags&NoEscape == 0 {
				if pi+1 >= len(p) {
					return false
				}
				pi++
				c = p[pi]
			}
			if si >= len(s) || !runeEq(c, s[si], flags) {
				return false
			}
			pi++
			si++

		default:
			if si >= len(s) || !runeEq(c, s[si], flags) {
				return false
			}
			pi++
			si++
		}
	}
	return si == len(s)
}

// matchClass evaluates the bracket expression starting at p[pi] == '['
// against r. It returns whether r is accepted and the pattern index just past
// the closing ']', or next == -1 when the expression is unterminated.
func matchClass(p []rune, pi int, r rune, flags Flags) (bool, int) {
	i := pi + 1
	negate := false
	if i < len(p) && (p[i] == '!' || p[i] == '^') {
		negate = true
		i++
	}

	matched := false
	first := true
	for {
		if i >= len(p) {
			return false, -1
		}
		c := p[i]
		if c == ']' && !first {
			i++
			break
		}
		first = false
		if c == '\\' && flags&NoEscape == 0 && i+1 < len(p) {
			i++
			c = p[i]
		}

		// Range: "a-z", unless the '-' is the last char before ']'.
		if i+2 < len(p) && p[i+1] == '-' && p[i+2] != ']' {
			lo := c
			i += 2
			hi := p[i]
			if hi == '\\' && flags&NoEscape == 0 && i+1 < len(p) {
				i++
				hi = p[i]
			}
			i++
			if inRange(lo, hi, r, flags) {
				matched = true
			}
			continue
		}

		if runeEq(c, r, flags) {
			matched = true
		}
		i++
	}
	return matched != negate, i
}

func inRange(lo, hi, r rune, flags Flags) bool {
	if lo <= r && r <= hi {
		return true
	}
	if flags&CaseFold != 0 {
		l, u := unicode.ToLower(r), unicode.ToUpper(r)
		if (lo <= l && l <= hi) || (lo <= u && u <= hi) {
			return true
		}
	}
	return false
}

func runeEq(a, b rune, flags Flags) bool {
	if a == b {
		return true
	}
	return flags&CaseFold != 0 && unicode.ToLower(a) == unicode.ToLower(b)
}

// leadingDot reports whether s[si] is a period in a position that Period
// protects from wildcard matching.
func leadingDot(s []rune, si int, flags Flags) bool {
	if flags&Period == 0 || si >= len(s) || s[si] != '.' {
		return false
	}
	return si == 0 || (flags&Pathname != 0 && s[si-1] == '/')
}

// splitSegments splits a pattern on unescaped slashes. Used by the compiled
// form to enforce Period per segment.
func splitSegments(pattern string, flags Flags) []string {
	if flags&NoEscape != 0 {
		return strings.Split(pattern, "/")
	}
	var segs []string
	var cur strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			cur.WriteByte(c)
			i++
			cur.WriteByte(pattern[i])
			continue
		}
		if c == '/' {
			segs = append(segs, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	segs = append(segs, cur.String())
	return segs
}
