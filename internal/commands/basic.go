package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vos-cloud/vshell/internal/pattern"
)

func registerBasic(s Set) {
	s["echo"] = cmdEcho
	s["pwd"] = cmdPwd
	s["true"] = func(*Context, []string) (string, error) { return "", nil }
	s["false"] = func(*Context, []string) (string, error) { return "", &ExitError{Code: CodeFailure} }
	s["date"] = cmdDate
	s["env"] = cmdEnv
	s["test"] = cmdTest
	s["["] = cmdTestBracket
	s["sha256sum"] = cmdSha256
}

func cmdEcho(cx *Context, argv []string) (string, error) {
	noNewline := false
	if len(argv) > 0 && argv[0] == "-n" {
		noNewline = true
		argv = argv[1:]
	}
	words, err := expandWords(cx, argv)
	if err != nil {
		return "", err
	}
	out := strings.Join(words, " ")
	if !noNewline {
		out += "\n"
	}
	return out, nil
}

// expandWords glob-expands only the arguments that carry metacharacters;
// plain words pass through untouched.
func expandWords(cx *Context, argv []string) ([]string, error) {
	out := make([]string, 0, len(argv))
	for _, a := range argv {
		if !pattern.HasMeta(a) {
			out = append(out, a)
			continue
		}
		matches, err := cx.Expand.Expand(cx.Ctx, cx.Cwd, a)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			out = append(out, a)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func cmdPwd(cx *Context, argv []string) (string, error) {
	return cx.Cwd + "\n", nil
}

func cmdDate(cx *Context, argv []string) (string, error) {
	now := time.Now().UTC()
	if len(argv) > 0 && strings.HasPrefix(argv[0], "+") {
		return formatDate(now, argv[0][1:]) + "\n", nil
	}
	return now.Format("Mon Jan  2 15:04:05 MST 2006") + "\n", nil
}

// formatDate supports the strftime verbs the shell's scripts actually use.
func formatDate(t time.Time, f string) string {
	r := strings.NewReplacer(
		"%Y", t.Format("2006"),
		"%m", t.Format("01"),
		"%d", t.Format("02"),
		"%H", t.Format("15"),
		"%M", t.Format("04"),
		"%S", t.Format("05"),
		"%s", strconv.FormatInt(t.Unix(), 10),
	)
	return r.Replace(f)
}

func cmdEnv(cx *Context, argv []string) (string, error) {
	keys := make([]string, 0, len(cx.Env))
	for k := range cx.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, cx.Env[k])
	}
	return b.String(), nil
}

func cmdTestBracket(cx *Context, argv []string) (string, error) {
	if len(argv) == 0 || argv[len(argv)-1] != "]" {
		return "", Usagef("[", "missing ']'")
	}
	return cmdTest(cx, argv[:len(argv)-1])
}

// cmdTest evaluates a conditional expression. An empty expression is false,
// matching POSIX test(1).
func cmdTest(cx *Context, argv []string) (string, error) {
	ok, err := evalTest(cx, argv)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ExitError{Code: CodeFailure}
	}
	return "", nil
}

func evalTest(cx *Context, argv []string) (bool, error) {
	switch len(argv) {
	case 0:
		return false, nil
	case 1:
		return argv[0] != "", nil
	case 2:
		op, arg := argv[0], argv[1]
		switch op {
		case "-z":
			return arg == "", nil
		case "-n":
			return arg != "", nil
		case "-e", "-f", "-d":
			p := resolveOperand(cx, arg)
			f, implicit, err := statPath(cx, p)
			if err != nil {
				return false, err
			}
			dir := implicit || (f != nil && f.IsDir())
			switch op {
			case "-e":
				return f != nil || implicit, nil
			case "-f":
				return f != nil && !dir, nil
			default:
				return dir, nil
			}
		case "!":
			return arg == "", nil
		}
		return false, Usagef("test", "unknown operator %s", op)
	case 3:
		a, op, b := argv[0], argv[1], argv[2]
		switch op {
		case "=", "==":
			return a == b, nil
		case "!=":
			return a != b, nil
		case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
			x, err1 := strconv.Atoi(a)
			y, err2 := strconv.Atoi(b)
			if err1 != nil || err2 != nil {
				return false, Usagef("test", "integer expression expected")
			}
			switch op {
			case "-eq":
				return x == y, nil
			case "-ne":
				return x != y, nil
			case "-lt":
				return x < y, nil
			case "-le":
				return x <= y, nil
			case "-gt":
				return x > y, nil
			default:
				return x >= y, nil
			}
		}
		if a == "!" {
			ok, err := evalTest(cx, argv[1:])
			return !ok, err
		}
		return false, Usagef("test", "unknown operator %s", op)
	default:
		if argv[0] == "!" {
			ok, err := evalTest(cx, argv[1:])
			return !ok, err
		}
		return false, Usagef("test", "too many arguments")
	}
}

func cmdSha256(cx *Context, argv []string) (string, error) {
	if len(argv) == 0 {
		sum := sha256.Sum256([]byte(cx.Stdin))
		return hex.EncodeToString(sum[:]) + "  -\n", nil
	}
	paths, err := expandArgs(cx, argv)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var firstErr error
	for _, p := range paths {
		content, err := readFile(cx, "sha256sum", resolveOperand(cx, p))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sum := sha256.Sum256([]byte(content))
		fmt.Fprintf(&b, "%s  %s\n", hex.EncodeToString(sum[:]), p)
	}
	return b.String(), firstErr
}
