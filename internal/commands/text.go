package commands

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vos-cloud/vshell/internal/pattern"
	"github.com/vos-cloud/vshell/internal/vpath"
)

func registerText(s Set) {
	s["grep"] = cmdGrep
	s["find"] = cmdFind
	s["head"] = cmdHead
	s["tail"] = cmdTail
	s["wc"] = cmdWc
	s["sort"] = cmdSort
	s["uniq"] = cmdUniq
}

// splitLines splits on newline, dropping the empty tail a trailing newline
// leaves behind.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func cmdGrep(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("grep", argv, []string{"i", "n", "v", "r"}, nil)
	if err != nil {
		return "", err
	}
	if len(f.Args) == 0 {
		return "", Usagef("grep", "missing pattern")
	}
	expr := f.Args[0]
	if f.Bool("i") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return "", Usagef("grep", "invalid pattern: %v", err)
	}

	type input struct {
		name string
		text string
	}
	var inputs []input
	if len(f.Args) == 1 {
		inputs = append(inputs, input{"", cx.Stdin})
	} else {
		paths, err := expandArgs(cx, f.Args[1:])
		if err != nil {
			return "", err
		}
		for _, p := range paths {
			p = resolveOperand(cx, p)
			if f.Bool("r") {
				dir, err := isDir(cx, p)
				if err != nil {
					return "", err
				}
				if dir {
					kids, err := cx.Store.ListByPrefix(cx.Ctx, cx.Project, p)
					if err != nil {
						return "", err
					}
					for _, k := range kids {
						if !k.IsDir() && !k.IsBinary {
							inputs = append(inputs, input{k.Path, k.Content})
						}
					}
					continue
				}
			}
			text, err := readFile(cx, "grep", p)
			if err != nil {
				return "", err
			}
			inputs = append(inputs, input{p, text})
		}
	}

	showName := len(inputs) > 1
	var b strings.Builder
	matched := false
	for _, in := range inputs {
		for i, line := range splitLines(in.text) {
			if re.MatchString(line) != f.Bool("v") {
				matched = true
				if showName {
					b.WriteString(in.name + ":")
				}
				if f.Bool("n") {
					fmt.Fprintf(&b, "%d:", i+1)
				}
				b.WriteString(line + "\n")
			}
		}
	}
	if !matched {
		return b.String(), &ExitError{Code: CodeFailure}
	}
	return b.String(), nil
}

func cmdFind(cx *Context, argv []string) (string, error) {
	root := "."
	rest := argv
	if len(argv) > 0 && !strings.HasPrefix(argv[0], "-") {
		root, rest = argv[0], argv[1:]
	}
	var namePat, typeFilter string
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-name":
			if i+1 >= len(rest) {
				return "", Usagef("find", "-name requires an argument")
			}
			i++
			namePat = rest[i]
		case "-type":
			if i+1 >= len(rest) {
				return "", Usagef("find", "-type requires an argument")
			}
			i++
			typeFilter = rest[i]
			if typeFilter != "f" && typeFilter != "d" {
				return "", Usagef("find", "unknown type %s", typeFilter)
			}
		default:
			return "", Usagef("find", "unknown predicate %s", rest[i])
		}
	}

	start := resolveOperand(cx, root)
	entry, implicit, err := statPath(cx, start)
	if err != nil {
		return "", err
	}
	if entry == nil && !implicit {
		return "", ErrNotFound("find", root)
	}

	type node struct {
		path string
		dir  bool
	}
	nodes := []node{{start, implicit || (entry != nil && entry.IsDir())}}
	if nodes[0].dir {
		kids, err := cx.Store.ListByPrefix(cx.Ctx, cx.Project, start)
		if err != nil {
			return "", err
		}
		seen := map[string]bool{start: true}
		for _, k := range kids {
			// Materialize implicit intermediate folders on the way down.
			for d := vpath.Dir(k.Path); d != start && !seen[d]; d = vpath.Dir(d) {
				seen[d] = true
				nodes = append(nodes, node{d, true})
			}
			nodes = append(nodes, node{k.Path, k.IsDir()})
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].path < nodes[j].path })

	var b strings.Builder
	for _, n := range nodes {
		if typeFilter == "f" && n.dir || typeFilter == "d" && !n.dir {
			continue
		}
		if namePat != "" && !pattern.Match(namePat, vpath.Base(n.path), pattern.Period) {
			continue
		}
		b.WriteString(n.path + "\n")
	}
	return b.String(), nil
}

// headTailInput resolves the single optional operand or falls back to stdin.
func headTailInput(cx *Context, cmd string, args []string) (string, error) {
	if len(args) == 0 {
		return cx.Stdin, nil
	}
	paths, err := expandArgs(cx, args)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range paths {
		text, err := readFile(cx, cmd, resolveOperand(cx, p))
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func parseCount(cmd string, f *Flags) (int, []string, error) {
	n := 10
	args := f.Args
	if f.Bool("n") {
		if len(args) == 0 {
			return 0, nil, Usagef(cmd, "-n requires an argument")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return 0, nil, Usagef(cmd, "invalid line count %q", args[0])
		}
		n = v
		args = args[1:]
	}
	return n, args, nil
}

func cmdHead(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("head", argv, []string{"n"}, nil)
	if err != nil {
		return "", err
	}
	n, args, err := parseCount("head", f)
	if err != nil {
		return "", err
	}
	text, err := headTailInput(cx, "head", args)
	if err != nil {
		return "", err
	}
	lines := splitLines(text)
	if len(lines) > n {
		lines = lines[:n]
	}
	return joinLines(lines), nil
}

func cmdTail(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("tail", argv, []string{"n"}, nil)
	if err != nil {
		return "", err
	}
	n, args, err := parseCount("tail", f)
	if err != nil {
		return "", err
	}
	text, err := headTailInput(cx, "tail", args)
	if err != nil {
		return "", err
	}
	lines := splitLines(text)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return joinLines(lines), nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func cmdWc(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("wc", argv, []string{"l", "w", "c"}, nil)
	if err != nil {
		return "", err
	}
	text, err := headTailInput(cx, "wc", f.Args)
	if err != nil {
		return "", err
	}
	lineCount := strings.Count(text, "\n")
	wordCount := len(strings.Fields(text))
	byteCount := len(text)

	switch {
	case f.Bool("l"):
		return fmt.Sprintf("%d\n", lineCount), nil
	case f.Bool("w"):
		return fmt.Sprintf("%d\n", wordCount), nil
	case f.Bool("c"):
		return fmt.Sprintf("%d\n", byteCount), nil
	default:
		return fmt.Sprintf("%7d %7d %7d\n", lineCount, wordCount, byteCount), nil
	}
}

func cmdSort(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("sort", argv, []string{"r", "u", "n"}, nil)
	if err != nil {
		return "", err
	}
	text, err := headTailInput(cx, "sort", f.Args)
	if err != nil {
		return "", err
	}
	lines := splitLines(text)
	if f.Bool("n") {
		sort.SliceStable(lines, func(i, j int) bool {
			a, _ := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64)
			b, _ := strconv.ParseFloat(strings.TrimSpace(lines[j]), 64)
			if a != b {
				return a < b
			}
			return lines[i] < lines[j]
		})
	} else {
		sort.Strings(lines)
	}
	if f.Bool("r") {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}
	if f.Bool("u") {
		out := lines[:0]
		for _, l := range lines {
			if len(out) == 0 || out[len(out)-1] != l {
				out = append(out, l)
			}
		}
		lines = out
	}
	return joinLines(lines), nil
}

func cmdUniq(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("uniq", argv, []string{"c", "d"}, nil)
	if err != nil {
		return "", err
	}
	text, err := headTailInput(cx, "uniq", f.Args)
	if err != nil {
		return "", err
	}
	lines := splitLines(text)
	var b strings.Builder
	for i := 0; i < len(lines); {
		j := i
		for j < len(lines) && lines[j] == lines[i] {
			j++
		}
		run := j - i
		switch {
		case f.Bool("d") && run < 2:
		case f.Bool("c"):
			fmt.Fprintf(&b, "%7d %s\n", run, lines[i])
		default:
			b.WriteString(lines[i] + "\n")
		}
		i = j
	}
	return b.String(), nil
}
