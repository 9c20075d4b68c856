package commands

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vos-cloud/vshell/internal/archive"
	"github.com/vos-cloud/vshell/internal/store"
)

func registerArchive(s Set) {
	s["tar"] = cmdTar
	s["zip"] = cmdZip
	s["unzip"] = cmdUnzip
	s["file"] = cmdFile
}

type tarMode struct {
	create, extract, list bool
	gzip, verbose         bool
	archive               string
	args                  []string
}

// parseTarMode accepts the classic bundled flag word, with or without the
// leading dash: "tar -czf out.tgz src", "tar xf in.tar".
func parseTarMode(argv []string) (*tarMode, error) {
	if len(argv) == 0 {
		return nil, Usagef("tar", "missing mode (c, x or t)")
	}
	m := &tarMode{}
	word := strings.TrimPrefix(argv[0], "-")
	rest := argv[1:]
	needsFile := false
	for _, r := range word {
		switch r {
		case 'c':
			m.create = true
		case 'x':
			m.extract = true
		case 't':
			m.list = true
		case 'z':
			m.gzip = true
		case 'v':
			m.verbose = true
		case 'f':
			needsFile = true
		default:
			return nil, Usagef("tar", "unknown flag %c", r)
		}
	}
	modes := 0
	for _, on := range []bool{m.create, m.extract, m.list} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		return nil, Usagef("tar", "exactly one of c, x, t is required")
	}
	if needsFile {
		if len(rest) == 0 {
			return nil, Usagef("tar", "f requires an archive name")
		}
		m.archive, rest = rest[0], rest[1:]
	} else if !m.create {
		return nil, Usagef("tar", "f is required for this mode")
	}
	m.args = rest
	return m, nil
}

func cmdTar(cx *Context, argv []string) (string, error) {
	m, err := parseTarMode(argv)
	if err != nil {
		return "", err
	}
	switch {
	case m.create:
		if len(m.args) == 0 {
			return "", Usagef("tar", "no paths to archive")
		}
		data, err := cx.Archive.EncodeTar(cx.Ctx, cx.Cwd, m.args, m.gzip)
		if err != nil {
			return "", err
		}
		if m.archive == "" {
			return "", Usagef("tar", "writing to stdout is not supported; use f")
		}
		if err := writeBinary(cx, resolveOperand(cx, m.archive), data); err != nil {
			return "", err
		}
		if m.verbose {
			return tarNames(data)
		}
		return "", nil

	case m.list:
		data, err := readArchive(cx, "tar", m.archive)
		if err != nil {
			return "", err
		}
		return tarNames(data)

	default: // extract
		data, err := readArchive(cx, "tar", m.archive)
		if err != nil {
			return "", err
		}
		written, err := cx.Archive.ExtractTar(cx.Ctx, data, cx.Cwd)
		if err != nil {
			return "", Failf("tar", "%v", err)
		}
		if m.verbose {
			return strings.Join(written, "\n") + "\n", nil
		}
		return "", nil
	}
}

func tarNames(data []byte) (string, error) {
	entries, err := archive.ListTar(data)
	if err != nil {
		return "", Failf("tar", "%v", err)
	}
	var b strings.Builder
	for _, e := range entries {
		name := e.Name
		if e.Dir {
			name += "/"
		}
		b.WriteString(name + "\n")
	}
	return b.String(), nil
}

func cmdZip(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("zip", argv, []string{"r"}, nil)
	if err != nil {
		return "", err
	}
	if len(f.Args) < 2 {
		return "", Usagef("zip", "usage: zip [-r] archive path...")
	}
	data, err := cx.Archive.CreateZip(cx.Ctx, cx.Cwd, f.Args[1:], f.Bool("r"))
	if err != nil {
		return "", err
	}
	if err := writeBinary(cx, resolveOperand(cx, f.Args[0]), data); err != nil {
		return "", err
	}
	return "", nil
}

func cmdUnzip(cx *Context, argv []string) (string, error) {
	dest := cx.Cwd
	list := false
	var name string
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-l":
			list = true
		case "-d":
			if i+1 >= len(argv) {
				return "", Usagef("unzip", "-d requires a directory")
			}
			i++
			dest = resolveOperand(cx, argv[i])
		default:
			if strings.HasPrefix(argv[i], "-") {
				return "", Usagef("unzip", "unknown option %s", argv[i])
			}
			if name != "" {
				return "", Usagef("unzip", "multiple archives are not supported")
			}
			name = argv[i]
		}
	}
	if name == "" {
		return "", Usagef("unzip", "missing archive operand")
	}
	data, err := readArchive(cx, "unzip", name)
	if err != nil {
		return "", err
	}
	if list {
		names, err := archive.ListZip(data)
		if err != nil {
			return "", Failf("unzip", "%v", err)
		}
		return strings.Join(names, "\n") + "\n", nil
	}
	written, err := cx.Archive.ExtractZip(cx.Ctx, data, dest)
	if err != nil {
		return "", Failf("unzip", "%v", err)
	}
	return strings.Join(written, "\n") + "\n", nil
}

// readArchive loads raw archive bytes from the store.
func readArchive(cx *Context, cmd, path string) ([]byte, error) {
	p := resolveOperand(cx, path)
	f, implicit, err := statPath(cx, p)
	if err != nil {
		return nil, err
	}
	if implicit || (f != nil && f.IsDir()) {
		return nil, ErrIsDirectory(cmd, path)
	}
	if f == nil {
		return nil, ErrNotFound(cmd, path)
	}
	return f.Bytes(), nil
}

// writeTextOrBinary stores data at path, classifying the payload so text
// lands in Content and binary in Data.
func writeTextOrBinary(cx *Context, path string, data []byte) error {
	f := store.File{ProjectID: cx.Project, Path: path, Kind: store.KindFile}
	if archive.IsText(path, data) {
		f.Content = string(data)
	} else {
		f.IsBinary = true
		f.Data = data
	}
	_, err := cx.Store.Create(cx.Ctx, f)
	return err
}

// writeBinary stores data at path as a binary file.
func writeBinary(cx *Context, path string, data []byte) error {
	_, err := cx.Store.Create(cx.Ctx, store.File{
		ProjectID: cx.Project,
		Path:      path,
		Kind:      store.KindFile,
		IsBinary:  true,
		Data:      data,
	})
	return err
}

func cmdFile(cx *Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", Usagef("file", "missing file operand")
	}
	paths, err := expandArgs(cx, argv)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var firstErr error
	for _, a := range paths {
		p := resolveOperand(cx, a)
		f, implicit, err := statPath(cx, p)
		if err != nil {
			return "", err
		}
		switch {
		case implicit || (f != nil && f.IsDir()):
			b.WriteString(a + ": directory\n")
		case f == nil:
			if firstErr == nil {
				firstErr = ErrNotFound("file", a)
			}
		case !f.IsBinary && archive.IsText(f.Name, f.Bytes()):
			b.WriteString(a + ": text\n")
		default:
			mt := mimetype.Detect(f.Bytes())
			b.WriteString(a + ": " + mt.String() + "\n")
		}
	}
	return b.String(), firstErr
}
