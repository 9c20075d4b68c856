// Package pattern implements POSIX fnmatch-style glob matching.
//
// Match is a backtracking matcher over a pattern/string cursor pair and is
// the semantic reference. Compile translates the same pattern into an
// anchored regular expression; the two agree on every input and the compiled
// form exists only as a performance path for repeated matching.
//
// Matching is always anchored: a pattern matches the whole string or not at
// all, never a substring.
package pattern
