package commands

import "strings"

func registerRuntime(s Set) {
	s["node"] = cmdNode
}

// cmdNode runs a JavaScript file, or an inline snippet with -e.
func cmdNode(cx *Context, argv []string) (string, error) {
	if cx.JS == nil {
		return "", Failf("node", "runtime not configured")
	}
	if len(argv) == 0 {
		return "", Usagef("node", "missing script operand")
	}

	name := argv[0]
	var source string
	if argv[0] == "-e" || argv[0] == "--eval" {
		if len(argv) < 2 {
			return "", Usagef("node", "-e requires an expression")
		}
		name, source = "eval", argv[1]
	} else {
		text, err := readFile(cx, "node", resolveOperand(cx, argv[0]))
		if err != nil {
			return "", err
		}
		source = text
	}

	out, err := cx.JS.RunScript(cx.Ctx, name, source)
	if err != nil {
		return out, Failf("node", "%s", strings.TrimSpace(err.Error()))
	}
	return out, nil
}
