package shell

import (
	"context"
	"sort"
	"strings"
)

// Category classifies a command name for dispatch.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryBuiltin
	CategoryUnix
	CategoryTool
	CategoryRuntime
	CategoryExtension
)

func (c Category) String() string {
	switch c {
	case CategoryBuiltin:
		return "builtin"
	case CategoryUnix:
		return "unix"
	case CategoryTool:
		return "tool"
	case CategoryRuntime:
		return "runtime"
	case CategoryExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// ExtensionRegistry lets a host plug extra commands into the shell. A name
// owned by the registry overrides every static category. A nil registry is
// the "none configured" state.
type ExtensionRegistry interface {
	Owns(name string) bool
	Execute(ctx context.Context, name string, argv []string, stdin string) (string, error)
}

// CommandInfo describes one routable command.
type CommandInfo struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Router classifies command names. The category sets are built per instance;
// nothing here is package-level mutable state.
type Router struct {
	static map[string]Category
	ext    ExtensionRegistry
}

var (
	builtinNames = []string{
		"echo", "cd", "pwd", "export", "which", "test", "[", "true", "false", "sh", "env",
	}
	unixNames = []string{
		"ls", "cat", "touch", "mkdir", "rm", "cp", "mv", "grep", "find",
		"head", "tail", "wc", "sort", "uniq", "date", "file", "sha256sum",
		"tar", "zip", "unzip",
	}
	toolNames = []string{
		"git", "npm", "npx", "pyxis", "curl",
	}
	runtimeNames = []string{
		"node", "python", "python3",
	}
)

// NewRouter builds a router with the static tables and an optional
// extension registry.
func NewRouter(ext ExtensionRegistry) *Router {
	static := make(map[string]Category)
	for _, n := range builtinNames {
		static[n] = CategoryBuiltin
	}
	for _, n := range unixNames {
		static[n] = CategoryUnix
	}
	for _, n := range toolNames {
		static[n] = CategoryTool
	}
	for _, n := range runtimeNames {
		static[n] = CategoryRuntime
	}
	return &Router{static: static, ext: ext}
}

// Categorize returns the command's category. Lookup is case-insensitive and
// an extension claim wins over any static set.
func (r *Router) Categorize(name string) Category {
	if r.ext != nil && r.ext.Owns(name) {
		return CategoryExtension
	}
	if c, ok := r.static[strings.ToLower(name)]; ok {
		return c
	}
	return CategoryUnknown
}

// HasCommand reports whether the name maps to any category.
func (r *Router) HasCommand(name string) bool {
	return r.Categorize(name) != CategoryUnknown
}

// CommandInfo returns routing info for one command name.
func (r *Router) CommandInfo(name string) (CommandInfo, bool) {
	c := r.Categorize(name)
	if c == CategoryUnknown {
		return CommandInfo{}, false
	}
	return CommandInfo{Name: strings.ToLower(name), Category: c}, true
}

// ListCommands returns every statically-known command, sorted by name.
func (r *Router) ListCommands() []CommandInfo {
	out := make([]CommandInfo, 0, len(r.static))
	for n, c := range r.static {
		out = append(out, CommandInfo{Name: n, Category: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
