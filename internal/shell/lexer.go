package shell

import "strings"

// SplitPipes splits a command line on "|" characters that sit outside single
// or double quotes. Quote characters are preserved for Tokenize.
func SplitPipes(line string) []string {
	var segs []string
	var cur strings.Builder
	inSingle, inDouble := false, false
	for _, r := range line {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			cur.WriteRune(r)
		case r == '"' && !inSingle:
			inDouble = !inDouble
			cur.WriteRune(r)
		case r == '|' && !inSingle && !inDouble:
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	segs = append(segs, cur.String())
	return segs
}

// Tokenize splits one pipeline segment into tokens. Unquoted whitespace
// separates tokens; quoted runs join the current token with the quote
// characters consumed, so `echo "a b"` yields two tokens and `a"b c"d` one.
func Tokenize(segment string) []string {
	var tokens []string
	var cur strings.Builder
	inSingle, inDouble := false, false
	inToken := false

	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	for _, r := range segment {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			inToken = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			inToken = true
		case (r == ' ' || r == '\t') && !inSingle && !inDouble:
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return tokens
}
