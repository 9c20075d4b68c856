// Package expand turns glob-bearing paths into concrete app paths by
// querying the file store. Traversal is segment-by-segment: literal segments
// are appended without existence checks, wildcard segments are matched
// against the directory's immediate children, and "**" matches zero or more
// whole directory levels.
package expand

import (
	"context"
	"strings"

	"github.com/vos-cloud/vshell/internal/pattern"
	"github.com/vos-cloud/vshell/internal/store"
	"github.com/vos-cloud/vshell/internal/vpath"
)

// Expander resolves glob patterns for one project.
type Expander struct {
	store   store.Store
	project string
}

// New creates an expander over st for the given project.
func New(st store.Store, project string) *Expander {
	return &Expander{store: st, project: project}
}

// Expand resolves pat (relative to base) into concrete app paths. A pattern
// without metacharacters resolves to exactly one path with no existence
// check. Results are deduplicated; order is traversal order.
func (e *Expander) Expand(ctx context.Context, base, pat string) ([]string, error) {
	if !pattern.HasMeta(pat) && !strings.ContainsRune(pat, '\\') {
		return []string{vpath.Resolve(base, pat)}, nil
	}
	resolved := vpath.Resolve(base, pat)
	segs := strings.Split(strings.TrimPrefix(resolved, "/"), "/")

	w := &walker{e: e, seen: make(map[string]bool)}
	if err := w.walk(ctx, vpath.Root, segs); err != nil {
		return nil, err
	}
	return w.out, nil
}

type walker struct {
	e    *Expander
	seen map[string]bool
	out  []string
}

func (w *walker) emit(p string) {
	if !w.seen[p] {
		w.seen[p] = true
		w.out = append(w.out, p)
	}
}

func (w *walker) walk(ctx context.Context, dir string, segs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(segs) == 0 {
		w.emit(dir)
		return nil
	}
	seg, rest := segs[0], segs[1:]

	if seg == "**" {
		return w.walkDoubleStar(ctx, dir, segs, rest)
	}

	if !pattern.HasMeta(seg) {
		return w.walk(ctx, joinSeg(dir, unescape(seg)), rest)
	}

	kids, err := w.e.children(ctx, dir)
	if err != nil {
		return err
	}
	for _, c := range kids {
		if !pattern.Match(seg, c.name, pattern.Period) {
			continue
		}
		p := joinSeg(dir, c.name)
		if len(rest) == 0 {
			w.emit(p)
			continue
		}
		if c.dir {
			if err := w.walk(ctx, p, rest); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkDoubleStar handles the "**" segment. As a tail it matches every stored
// descendant. Otherwise it tries consuming zero levels, then descends one
// level into each child directory while re-trying the same segment, which
// lets it span any number of intermediate levels.
func (w *walker) walkDoubleStar(ctx context.Context, dir string, segs, rest []string) error {
	if len(rest) == 0 {
		files, err := w.e.store.ListByPrefix(ctx, w.e.project, dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			w.emit(f.Path)
		}
		return nil
	}

	if err := w.walk(ctx, dir, rest); err != nil {
		return err
	}
	kids, err := w.e.children(ctx, dir)
	if err != nil {
		return err
	}
	for _, c := range kids {
		if c.dir {
			if err := w.walk(ctx, joinSeg(dir, c.name), segs); err != nil {
				return err
			}
		}
	}
	return nil
}

type child struct {
	name string
	dir  bool
}

// children lists the immediate children of dir, including folders that exist
// only implicitly through deeper descendants.
func (e *Expander) children(ctx context.Context, dir string) ([]child, error) {
	files, err := e.store.ListByPrefix(ctx, e.project, dir)
	if err != nil {
		return nil, err
	}
	base := dir
	if base == vpath.Root {
		base = ""
	}
	order := []string{}
	isDir := map[string]bool{}
	for _, f := range files {
		tail := strings.TrimPrefix(f.Path, base+"/")
		name, _, nested := strings.Cut(tail, "/")
		if _, ok := isDir[name]; !ok {
			order = append(order, name)
		}
		if nested || f.IsDir() {
			isDir[name] = true
		} else if _, ok := isDir[name]; !ok {
			isDir[name] = false
		}
	}
	out := make([]child, 0, len(order))
	for _, n := range order {
		out = append(out, child{name: n, dir: isDir[n]})
	}
	return out, nil
}

func joinSeg(dir, seg string) string {
	if dir == vpath.Root {
		return "/" + seg
	}
	return dir + "/" + seg
}

// unescape removes glob escapes from a literal segment.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
