package archive

import (
	"strings"
	"unicode/utf8"

	"github.com/vos-cloud/vshell/internal/vpath"
)

// Extensions and exact filenames that are always treated as text, checked
// before any content sampling.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".json": true, ".yaml": true,
	".yml": true, ".toml": true, ".xml": true, ".html": true, ".htm": true,
	".css": true, ".scss": true, ".js": true, ".jsx": true, ".mjs": true,
	".ts": true, ".tsx": true, ".go": true, ".py": true, ".rb": true,
	".rs": true, ".java": true, ".c": true, ".h": true, ".cpp": true,
	".hpp": true, ".sh": true, ".bash": true, ".zsh": true, ".sql": true,
	".csv": true, ".tsv": true, ".ini": true, ".cfg": true, ".conf": true,
	".env": true, ".log": true, ".svg": true, ".vue": true, ".svelte": true,
}

var textFilenames = map[string]bool{
	"makefile": true, "dockerfile": true, "license": true, "readme": true,
	"changelog": true, "authors": true, "notice": true, ".gitignore": true,
	".gitattributes": true, ".editorconfig": true, ".npmrc": true,
	".prettierrc": true, ".eslintrc": true, ".env": true,
}

const (
	sampleSize      = 8 * 1024
	maxControlRatio = 0.05
)

// IsText classifies an entry's bytes as text or binary: first by
// extension/filename allow-list, then by sampling the first 8 KiB.
func IsText(name string, data []byte) bool {
	base := strings.ToLower(vpath.Base("/" + name))
	if textFilenames[base] {
		return true
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 && textExtensions[base[i:]] {
		return true
	}
	return sampleIsText(data)
}

// sampleIsText applies the content heuristic: any NUL byte forces binary,
// more than 5% non-printable control bytes (excluding tab/LF/CR/FF/ESC)
// forces binary, and the remainder must decode as strict UTF-8.
func sampleIsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	sample := data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
		// Don't penalize a multibyte rune split at the sample boundary.
		for i := 0; i < utf8.UTFMax && len(sample) > 0; i++ {
			if r, _ := utf8.DecodeLastRune(sample); r != utf8.RuneError {
				break
			}
			sample = sample[:len(sample)-1]
		}
	}

	control := 0
	for _, b := range sample {
		if b == 0 {
			return false
		}
		if b < 0x20 {
			switch b {
			case '\t', '\n', '\r', '\f', 0x1b:
			default:
				control++
			}
		}
	}
	if float64(control) > maxControlRatio*float64(len(sample)) {
		return false
	}
	return utf8.Valid(sample)
}
