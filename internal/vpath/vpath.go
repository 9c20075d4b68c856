// Package vpath provides path resolution for the virtual filesystem.
//
// Two path spaces exist: app paths are project-root-relative and always
// start with "/" (e.g. /src/index.ts), fs paths are what the backing store
// abstraction sees (the app path prefixed by the project mount). The two are
// bijective for a fixed project name.
package vpath

import "strings"

// ProjectsRoot is the mount point under which every project lives.
const ProjectsRoot = "/projects"

// Root is the app-path root of a project.
const Root = "/"

// Resolve joins rel onto base. An absolute rel replaces base entirely.
// "." stays put and ".." is clamped at the root, so the result never
// escapes above "/".
func Resolve(base, rel string) string {
	if rel == "" {
		return Normalize(base)
	}
	if strings.HasPrefix(rel, "/") {
		return Normalize(rel)
	}
	if base == "" {
		base = Root
	}
	return Normalize(base + "/" + rel)
}

// Normalize splits on "/", drops empty and "." segments, pops the previous
// segment on ".." (dropping it when already at the root), and rejoins with a
// single leading slash. Trailing slashes are stripped except for the root.
func Normalize(p string) string {
	segs := strings.Split(p, "/")
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		switch s {
		case "", ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return Root
	}
	return "/" + strings.Join(out, "/")
}

// ToFSPath converts an app path to the store-absolute path for a project.
func ToFSPath(project, appPath string) string {
	p := Normalize(appPath)
	if p == Root {
		return ProjectsRoot + "/" + project
	}
	return ProjectsRoot + "/" + project + p
}

// ToAppPath converts a store-absolute path back to an app path. Paths outside
// the project mount are returned normalized rather than rejected; the two
// conversions are inverses for any path under the mount.
func ToAppPath(project, fsPath string) string {
	prefix := ProjectsRoot + "/" + project
	p := Normalize(fsPath)
	if p == prefix {
		return Root
	}
	if strings.HasPrefix(p, prefix+"/") {
		return p[len(prefix):]
	}
	return p
}

// Base returns the final segment of an app path, or "/" for the root.
func Base(p string) string {
	p = Normalize(p)
	if p == Root {
		return Root
	}
	return p[strings.LastIndex(p, "/")+1:]
}

// Dir returns the parent of an app path; the root is its own parent.
func Dir(p string) string {
	p = Normalize(p)
	if p == Root {
		return Root
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return Root
	}
	return p[:i]
}

// IsRoot reports whether p normalizes to the project root.
func IsRoot(p string) bool {
	return Normalize(p) == Root
}

// Depth returns the number of segments in an app path (0 for the root).
func Depth(p string) int {
	p = Normalize(p)
	if p == Root {
		return 0
	}
	return strings.Count(p, "/")
}
