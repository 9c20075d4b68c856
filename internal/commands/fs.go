package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/vos-cloud/vshell/internal/store"
	"github.com/vos-cloud/vshell/internal/vpath"
)

func registerFS(s Set) {
	s["ls"] = cmdLs
	s["cat"] = cmdCat
	s["touch"] = cmdTouch
	s["mkdir"] = cmdMkdir
	s["rm"] = cmdRm
	s["cp"] = cmdCp
	s["mv"] = cmdMv
}

func cmdLs(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("ls", argv, []string{"a", "l", "all"}, nil)
	if err != nil {
		return "", err
	}
	showAll := f.Bool("a", "all")
	long := f.Bool("l")

	operands := f.Args
	if len(operands) == 0 {
		operands = []string{"."}
	}
	paths, err := expandArgs(cx, operands)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var firstErr error
	for i, p := range paths {
		p = resolveOperand(cx, p)
		entry, implicit, err := statPath(cx, p)
		if err != nil {
			return "", err
		}
		switch {
		case entry == nil && !implicit:
			if firstErr == nil {
				firstErr = ErrNotFound("ls", p)
			}
		case entry != nil && !entry.IsDir():
			b.WriteString(lsLine(long, entry.Name, entry))
		default:
			if len(paths) > 1 {
				if i > 0 {
					b.WriteString("\n")
				}
				fmt.Fprintf(&b, "%s:\n", p)
			}
			if err := lsDir(cx, &b, p, long, showAll); err != nil {
				return "", err
			}
		}
	}
	return b.String(), firstErr
}

func lsDir(cx *Context, b *strings.Builder, dir string, long, showAll bool) error {
	names, err := listChildren(cx, dir)
	if err != nil {
		return err
	}
	for _, n := range names {
		bare := strings.TrimSuffix(n, "/")
		if !showAll && strings.HasPrefix(bare, ".") {
			continue
		}
		var entry *store.File
		if long {
			entry, _, err = statPath(cx, vpath.Resolve(dir, bare))
			if err != nil {
				return err
			}
		}
		b.WriteString(lsLine(long, n, entry))
	}
	return nil
}

// lsLine formats one listing row. entry may be nil for implicit folders.
func lsLine(long bool, name string, entry *store.File) string {
	if !long {
		return name + "\n"
	}
	mode, size := "-rw-r--r--", int64(0)
	mtime := time.Now().UTC()
	if strings.HasSuffix(name, "/") || (entry != nil && entry.IsDir()) {
		mode = "drwxr-xr-x"
	}
	if entry != nil {
		size = entry.Size()
		if !entry.UpdatedAt.IsZero() {
			mtime = entry.UpdatedAt
		}
	}
	return fmt.Sprintf("%s %8d %s %s\n", mode, size, mtime.Format("Jan _2 15:04"), name)
}

func cmdCat(cx *Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return cx.Stdin, nil
	}
	paths, err := expandArgs(cx, argv)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var firstErr error
	for _, p := range paths {
		if p == "-" {
			b.WriteString(cx.Stdin)
			continue
		}
		content, err := readFile(cx, "cat", resolveOperand(cx, p))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		b.WriteString(content)
	}
	return b.String(), firstErr
}

func cmdTouch(cx *Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", Usagef("touch", "missing file operand")
	}
	for _, a := range argv {
		p := resolveOperand(cx, a)
		f, implicit, err := statPath(cx, p)
		if err != nil {
			return "", err
		}
		if implicit || (f != nil && f.IsDir()) {
			continue
		}
		if f != nil {
			f.UpdatedAt = time.Now().UTC()
			if err := cx.Store.Save(cx.Ctx, f); err != nil {
				return "", err
			}
			continue
		}
		_, err = cx.Store.Create(cx.Ctx, store.File{
			ProjectID: cx.Project,
			Path:      p,
			Kind:      store.KindFile,
		})
		if err != nil {
			return "", err
		}
	}
	return "", nil
}

func cmdMkdir(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("mkdir", argv, []string{"p", "parents"}, nil)
	if err != nil {
		return "", err
	}
	if len(f.Args) == 0 {
		return "", Usagef("mkdir", "missing operand")
	}
	parents := f.Bool("p", "parents")

	var firstErr error
	for _, a := range f.Args {
		p := resolveOperand(cx, a)
		entry, implicit, err := statPath(cx, p)
		if err != nil {
			return "", err
		}
		if entry != nil || implicit {
			if !parents {
				if firstErr == nil {
					firstErr = Failf("mkdir", "%s: File exists", a)
				}
			}
			continue
		}
		if !parents && !vpath.IsRoot(vpath.Dir(p)) {
			ok, err := isDir(cx, vpath.Dir(p))
			if err != nil {
				return "", err
			}
			if !ok {
				if firstErr == nil {
					firstErr = ErrNotFound("mkdir", a)
				}
				continue
			}
		}
		_, err = cx.Store.Create(cx.Ctx, store.File{
			ProjectID: cx.Project,
			Path:      p,
			Kind:      store.KindFolder,
		})
		if err != nil {
			return "", err
		}
	}
	return "", firstErr
}

func cmdRm(cx *Context, argv []string) (string, error) {
	f, err := ParseFlags("rm", argv, []string{"r", "f", "recursive", "force"}, nil)
	if err != nil {
		return "", err
	}
	if len(f.Args) == 0 {
		return "", Usagef("rm", "missing operand")
	}
	recursive := f.Bool("r", "recursive")
	force := f.Bool("f", "force")

	paths, err := expandArgs(cx, f.Args)
	if err != nil {
		return "", err
	}
	var res batch
	for _, p := range paths {
		p = resolveOperand(cx, p)
		entry, implicit, err := statPath(cx, p)
		if err != nil {
			return "", err
		}
		dir := implicit || (entry != nil && entry.IsDir())
		switch {
		case entry == nil && !implicit:
			if !force {
				res.fail(ErrNotFound("rm", p))
			}
		case dir && !recursive:
			res.fail(ErrIsDirectory("rm", p))
		default:
			if err := removeTree(cx, p, entry); err != nil {
				return "", err
			}
			res.ok()
		}
	}
	return "", res.err()
}

// removeTree deletes the entry at p. Stored folders cascade in the store;
// implicit folders are removed by deleting every descendant row.
func removeTree(cx *Context, p string, entry *store.File) error {
	if entry != nil {
		return cx.Store.Delete(cx.Ctx, entry.ID)
	}
	kids, err := cx.Store.ListByPrefix(cx.Ctx, cx.Project, p)
	if err != nil {
		return err
	}
	for _, k := range kids {
		if err := cx.Store.Delete(cx.Ctx, k.ID); err != nil {
			return err
		}
	}
	return nil
}

func cmdCp(cx *Context, argv []string) (string, error) {
	return copyOrMove(cx, "cp", argv, false)
}

func cmdMv(cx *Context, argv []string) (string, error) {
	return copyOrMove(cx, "mv", argv, true)
}

func copyOrMove(cx *Context, cmd string, argv []string, move bool) (string, error) {
	f, err := ParseFlags(cmd, argv, []string{"r", "f", "recursive", "force"}, nil)
	if err != nil {
		return "", err
	}
	recursive := move || f.Bool("r", "recursive")
	if len(f.Args) < 2 {
		return "", Usagef(cmd, "missing destination operand")
	}

	srcArgs, dstArg := f.Args[:len(f.Args)-1], f.Args[len(f.Args)-1]
	srcs, err := expandArgs(cx, srcArgs)
	if err != nil {
		return "", err
	}
	dst := resolveOperand(cx, dstArg)
	dstIsDir, err := isDir(cx, dst)
	if err != nil {
		return "", err
	}
	if len(srcs) > 1 && !dstIsDir {
		return "", Failf(cmd, "target %s is not a directory", dstArg)
	}

	var res batch
	for _, s := range srcs {
		s = resolveOperand(cx, s)
		target := dst
		if dstIsDir {
			target = vpath.Resolve(dst, vpath.Base(s))
		}
		if err := copyOne(cx, cmd, s, target, recursive, move); err != nil {
			if ee, ok := err.(*ExitError); ok {
				res.fail(ee)
				continue
			}
			return "", err
		}
		res.ok()
	}
	return "", res.err()
}

func copyOne(cx *Context, cmd, src, dst string, recursive, move bool) error {
	entry, implicit, err := statPath(cx, src)
	if err != nil {
		return err
	}
	switch {
	case entry == nil && !implicit:
		return ErrNotFound(cmd, src)
	case entry != nil && !entry.IsDir():
		_, err := cx.Store.Create(cx.Ctx, store.File{
			ProjectID: cx.Project,
			Path:      dst,
			Kind:      store.KindFile,
			Content:   entry.Content,
			IsBinary:  entry.IsBinary,
			Data:      entry.Data,
		})
		if err != nil {
			return err
		}
		if move {
			return cx.Store.Delete(cx.Ctx, entry.ID)
		}
		return nil
	case !recursive:
		return ErrIsDirectory(cmd, src)
	default:
		return copyTree(cx, src, dst, entry, move)
	}
}

// copyTree duplicates a folder subtree under a new prefix, then removes the
// source when moving.
func copyTree(cx *Context, src, dst string, entry *store.File, move bool) error {
	kids, err := cx.Store.ListByPrefix(cx.Ctx, cx.Project, src)
	if err != nil {
		return err
	}
	out := []store.File{{ProjectID: cx.Project, Path: dst, Kind: store.KindFolder}}
	for _, k := range kids {
		out = append(out, store.File{
			ProjectID: cx.Project,
			Path:      dst + strings.TrimPrefix(k.Path, src),
			Kind:      k.Kind,
			Content:   k.Content,
			IsBinary:  k.IsBinary,
			Data:      k.Data,
		})
	}
	if err := cx.Store.CreateBulk(cx.Ctx, cx.Project, out); err != nil {
		return err
	}
	if move {
		return removeTree(cx, src, entry)
	}
	return nil
}
