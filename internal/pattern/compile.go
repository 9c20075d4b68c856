package pattern

import (
	"regexp"
	"strings"
)

// Compiled is the regular-expression form of a glob pattern. It accepts and
// rejects exactly the same inputs as Match for the same pattern and flags.
type Compiled struct {
	re    *regexp.Regexp
	flags Flags
	// Literal-dot requirement per pattern segment, for Period enforcement.
	segDot []bool
	// A pattern that can never match anything: a trailing bare escape, or a
	// bracket class left with no members (like "[/]" in pathname mode).
	never bool
}

// Compile translates pattern into an anchored regular expression.
func Compile(pattern string, flags Flags) (*Compiled, error) {
	var b strings.Builder
	b.WriteString("(?s)")
	if flags&CaseFold != 0 {
		b.WriteString("(?i)")
	}
	b.WriteByte('^')

	c := &Compiled{flags: flags}
	p := []rune(pattern)
	for i := 0; i < len(p); i++ {
		switch r := p[i]; r {
		case '*':
			for i+1 < len(p) && p[i+1] == '*' {
				i++
			}
			if flags&Pathname != 0 {
				b.WriteString("[^/]*")
			} else {
				b.WriteString(".*")
			}
		case '?':
			if flags&Pathname != 0 {
				b.WriteString("[^/]")
			} else {
				b.WriteString(".")
			}
		case '[':
			end := classEnd(p, i, flags)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			if !translateClass(&b, p[i:end-1], flags) {
				c.never = true
			}
			i = end - 1
		case '\\':
			if flags&NoEscape != 0 {
				b.WriteString(`\\`)
				continue
			}
			if i+1 >= len(p) {
				c.never = true
			} else {
				i++
				b.WriteString(regexp.QuoteMeta(string(p[i])))
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	c.re = re

	if flags&Period != 0 {
		for _, seg := range splitSegments(pattern, flags) {
			c.segDot = append(c.segDot, startsWithLiteralDot(seg, flags))
		}
	}
	return c, nil
}

// Match reports whether name matches the compiled pattern.
func (c *Compiled) Match(name string) bool {
	if c.never {
		return false
	}
	if c.flags&Period != 0 && !c.periodOK(name) {
		return false
	}
	return c.re.MatchString(name)
}

// periodOK applies the leading-period rule, which RE2 cannot express without
// lookahead: a dot opening the string (or any segment in pathname mode) must
// be matched by a literal dot in the corresponding pattern segment.
func (c *Compiled) periodOK(name string) bool {
	if c.flags&Pathname == 0 {
		return !strings.HasPrefix(name, ".") || (len(c.segDot) > 0 && c.segDot[0])
	}
	segs := strings.Split(name, "/")
	for i, seg := range segs {
		if i >= len(c.segDot) {
			break
		}
		if strings.HasPrefix(seg, ".") && !c.segDot[i] {
			return false
		}
	}
	return true
}

func startsWithLiteralDot(seg string, flags Flags) bool {
	if strings.HasPrefix(seg, ".") {
		return true
	}
	return flags&NoEscape == 0 && strings.HasPrefix(seg, `\.`)
}

// classEnd returns the index just past the bracket expression opening at
// p[start], or -1 when it is unterminated.
func classEnd(p []rune, start int, flags Flags) int {
	i := start + 1
	if i < len(p) && (p[i] == '!' || p[i] == '^') {
		i++
	}
	first := true
	for i < len(p) {
		switch {
		case p[i] == ']' && !first:
			return i + 1
		case p[i] == '\\' && flags&NoEscape == 0:
			i++
		}
		first = false
		i++
	}
	return -1
}

// translateClass emits the regex form of the bracket expression cls
// (inclusive of '[', exclusive of the final ']'). It returns false when the
// class cannot match any character, which makes the whole pattern
// unmatchable.
//
// In pathname mode a class must never match "/": Match rejects a slash
// before evaluating the class at all. A negated class therefore excludes
// "/" explicitly, and "/" is stripped from positive members, splitting any
// range that spans it.
func translateClass(b *strings.Builder, cls []rune, flags Flags) bool {
	i := 1
	negate := false
	if i < len(cls) && (cls[i] == '!' || cls[i] == '^') {
		negate = true
		i++
	}

	// Collect members as inclusive ranges; singles are lo==hi. Range
	// detection mirrors the backtracking matcher: "a-b" unless the dash is
	// the final character, with escapes resolved on both bounds.
	type span struct{ lo, hi rune }
	var spans []span
	for i < len(cls) {
		r := cls[i]
		if r == '\\' && flags&NoEscape == 0 && i+1 < len(cls) {
			i++
			r = cls[i]
		}
		if i+2 < len(cls) && cls[i+1] == '-' {
			i += 2
			hi := cls[i]
			if hi == '\\' && flags&NoEscape == 0 && i+1 < len(cls) {
				i++
				hi = cls[i]
			}
			i++
			spans = append(spans, span{r, hi})
			continue
		}
		spans = append(spans, span{r, r})
		i++
	}

	stripSlash := flags&Pathname != 0 && !negate
	var body strings.Builder
	for _, sp := range spans {
		if sp.lo > sp.hi {
			// Inverted ranges match nothing.
			continue
		}
		if stripSlash && sp.lo <= '/' && '/' <= sp.hi {
			if sp.lo < '/' {
				writeClassSpan(&body, sp.lo, '/'-1)
			}
			if sp.hi > '/' {
				writeClassSpan(&body, '/'+1, sp.hi)
			}
			continue
		}
		writeClassSpan(&body, sp.lo, sp.hi)
	}

	if body.Len() == 0 {
		if !negate {
			return false
		}
		// A negated class with no live members accepts any character,
		// bar "/" in pathname mode.
		if flags&Pathname != 0 {
			b.WriteString("[^/]")
		} else {
			b.WriteByte('.')
		}
		return true
	}

	b.WriteByte('[')
	if negate {
		b.WriteByte('^')
		if flags&Pathname != 0 {
			b.WriteByte('/')
		}
	}
	b.WriteString(body.String())
	b.WriteByte(']')
	return true
}

func writeClassSpan(b *strings.Builder, lo, hi rune) {
	writeClassRune(b, lo)
	if hi > lo {
		b.WriteByte('-')
		writeClassRune(b, hi)
	}
}

func writeClassRune(b *strings.Builder, r rune) {
	switch r {
	case '\\', ']', '^', '[', '-':
		b.WriteByte('\\')
	}
	b.WriteRune(r)
}
