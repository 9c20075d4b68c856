package commands

import (
	"sort"
	"strings"

	"github.com/vos-cloud/vshell/internal/store"
	"github.com/vos-cloud/vshell/internal/vpath"
)

// statPath looks up an app path. implicit reports a folder that exists only
// through descendants; such folders have no stored entry.
func statPath(cx *Context, path string) (f *store.File, implicit bool, err error) {
	f, err = cx.Store.GetByPath(cx.Ctx, cx.Project, path)
	if err != nil || f != nil {
		return f, false, err
	}
	if path == vpath.Root {
		return nil, true, nil
	}
	kids, err := cx.Store.ListByPrefix(cx.Ctx, cx.Project, path)
	if err != nil {
		return nil, false, err
	}
	return nil, len(kids) > 0, nil
}

// isDir reports whether path names a folder, stored or implicit.
func isDir(cx *Context, path string) (bool, error) {
	f, implicit, err := statPath(cx, path)
	if err != nil {
		return false, err
	}
	return implicit || (f != nil && f.IsDir()), nil
}

// readFile returns the content of a regular file at path.
func readFile(cx *Context, cmd, path string) (string, error) {
	f, implicit, err := statPath(cx, path)
	if err != nil {
		return "", err
	}
	if implicit || (f != nil && f.IsDir()) {
		return "", ErrIsDirectory(cmd, path)
	}
	if f == nil {
		return "", ErrNotFound(cmd, path)
	}
	return string(f.Bytes()), nil
}

// listChildren returns the names of dir's immediate children, folders
// suffixed with "/", sorted. Implicit folders are synthesized.
func listChildren(cx *Context, dir string) ([]string, error) {
	files, err := cx.Store.ListByPrefix(cx.Ctx, cx.Project, dir)
	if err != nil {
		return nil, err
	}
	base := dir
	if base == vpath.Root {
		base = ""
	}
	names := map[string]bool{} // name -> isDir
	for _, f := range files {
		tail := strings.TrimPrefix(f.Path, base+"/")
		name, _, nested := strings.Cut(tail, "/")
		if nested || f.IsDir() {
			names[name] = true
		} else if !names[name] {
			names[name] = false
		}
	}
	out := make([]string, 0, len(names))
	for n, dir := range names {
		if dir {
			n += "/"
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// resolveOperand resolves one path argument against the cwd.
func resolveOperand(cx *Context, arg string) string {
	return vpath.Resolve(cx.Cwd, arg)
}
