package commands

import "strings"

// Flags is the parsed option set of one command invocation.
type Flags struct {
	set    map[string]string
	Args   []string
	known  map[string]bool
	valued map[string]bool
}

// ParseFlags splits argv into options and positional arguments. Supported
// shapes: "--name", "--name=value", "-x" and combined short runs "-rf".
// "--" ends option parsing. Unknown options produce a usage error.
//
// known lists the accepted option names (long without dashes, shorts as
// single letters). valued lists which long options take an =value.
func ParseFlags(cmd string, argv []string, known []string, valued []string) (*Flags, error) {
	f := &Flags{
		set:    make(map[string]string),
		known:  make(map[string]bool, len(known)),
		valued: make(map[string]bool, len(valued)),
	}
	for _, k := range known {
		f.known[k] = true
	}
	for _, v := range valued {
		f.valued[v] = true
	}

	i := 0
	for ; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--":
			i++
			goto rest
		case strings.HasPrefix(a, "--"):
			name, value, hasValue := strings.Cut(a[2:], "=")
			if !f.known[name] {
				return nil, Usagef(cmd, "unknown option --%s", name)
			}
			if hasValue && !f.valued[name] {
				return nil, Usagef(cmd, "option --%s takes no value", name)
			}
			if !hasValue {
				value = "true"
			}
			f.set[name] = value
		case strings.HasPrefix(a, "-") && len(a) > 1:
			for _, r := range a[1:] {
				s := string(r)
				if !f.known[s] {
					return nil, Usagef(cmd, "unknown option -%s", s)
				}
				f.set[s] = "true"
			}
		default:
			f.Args = append(f.Args, a)
		}
	}
rest:
	f.Args = append(f.Args, argv[i:]...)
	return f, nil
}

// Bool reports whether any of the given option names was set.
func (f *Flags) Bool(names ...string) bool {
	for _, n := range names {
		if _, ok := f.set[n]; ok {
			return true
		}
	}
	return false
}

// Value returns the value of the first set option among names.
func (f *Flags) Value(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := f.set[n]; ok {
			return v, true
		}
	}
	return "", false
}
