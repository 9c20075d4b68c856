// Package archive implements the tar (ustar) and zip codecs for the virtual
// filesystem. The tar codec is written against the raw ustar layout rather
// than archive/tar: headers are built and parsed field by field, because the
// on-wire format here is product surface, not an implementation detail.
//
// Archives are fully buffered in memory end to end. Encode and extract are
// atomic from the caller's point of view; there is no streaming.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/vos-cloud/vshell/internal/expand"
	"github.com/vos-cloud/vshell/internal/store"
	"github.com/vos-cloud/vshell/internal/vpath"
)

const blockSize = 512

// ustar header field offsets.
const (
	offName     = 0
	lenName     = 100
	offMode     = 100
	offUID      = 108
	offGID      = 116
	offSize     = 124
	offMtime    = 136
	offChksum   = 148
	offTypeflag = 156
	offMagic    = 257
	offUname    = 265
	offGname    = 297
)

const (
	typeFile = '0'
	typeDir  = '5'

	modeFile = 0o644
	modeDir  = 0o755
)

// Entry is one archive member.
type Entry struct {
	Name    string
	Size    int64
	Dir     bool
	ModTime time.Time
	Data    []byte
}

// Codec encodes and decodes archives against one project's store.
type Codec struct {
	store   store.Store
	exp     *expand.Expander
	project string
}

// New creates a codec for the given project.
func New(st store.Store, exp *expand.Expander, project string) *Codec {
	return &Codec{store: st, exp: exp, project: project}
}

// EncodeTar builds a ustar stream for the given paths (globs allowed,
// resolved against cwd). Directories are walked recursively; a path emitted
// once is never emitted again. When gz is set the stream is gzip-wrapped.
func (c *Codec) EncodeTar(ctx context.Context, cwd string, paths []string, gz bool) ([]byte, error) {
	var buf bytes.Buffer
	seen := make(map[string]bool)
	now := time.Now()

	for _, p := range paths {
		expanded, err := c.exp.Expand(ctx, cwd, p)
		if err != nil {
			return nil, err
		}
		for _, ap := range expanded {
			if err := c.encodePath(ctx, &buf, ap, now, seen); err != nil {
				return nil, err
			}
		}
	}

	// End-of-archive marker: two all-zero blocks.
	buf.Write(make([]byte, 2*blockSize))

	if !gz {
		return buf.Bytes(), nil
	}
	var zbuf bytes.Buffer
	zw := gzip.NewWriter(&zbuf)
	if _, err := zw.Write(buf.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return zbuf.Bytes(), nil
}

func (c *Codec) encodePath(ctx context.Context, buf *bytes.Buffer, ap string, now time.Time, seen map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := c.store.GetByPath(ctx, c.project, ap)
	if err != nil {
		return err
	}
	if f != nil && !f.IsDir() {
		c.writeEntry(buf, ap, false, f.Bytes(), f.UpdatedAt, seen)
		return nil
	}

	// Folder, possibly implicit: it exists if it has descendants.
	kids, err := c.store.ListByPrefix(ctx, c.project, ap)
	if err != nil {
		return err
	}
	if f == nil && len(kids) == 0 {
		return fmt.Errorf("%s: No such file or directory", ap)
	}
	c.writeEntry(buf, ap, true, nil, now, seen)
	for _, k := range kids {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.writeParentDirs(buf, ap, k.Path, now, seen)
		if k.IsDir() {
			c.writeEntry(buf, k.Path, true, nil, k.UpdatedAt, seen)
		} else {
			c.writeEntry(buf, k.Path, false, k.Bytes(), k.UpdatedAt, seen)
		}
	}
	return nil
}

// writeParentDirs emits headers for the directories between root and p that
// have no stored row of their own, outermost first. Folders that exist only
// through their descendants still get an archive member this way.
func (c *Codec) writeParentDirs(buf *bytes.Buffer, root, p string, now time.Time, seen map[string]bool) {
	var dirs []string
	for d := vpath.Dir(p); d != root && !vpath.IsRoot(d) && !seen[d]; d = vpath.Dir(d) {
		dirs = append(dirs, d)
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		c.writeEntry(buf, dirs[i], true, nil, now, seen)
	}
}

func (c *Codec) writeEntry(buf *bytes.Buffer, ap string, dir bool, data []byte, mtime time.Time, seen map[string]bool) {
	if seen[ap] {
		return
	}
	seen[ap] = true
	name := strings.TrimPrefix(ap, "/")
	buf.Write(buildHeader(name, dir, int64(len(data)), mtime))
	if !dir {
		buf.Write(data)
		if pad := len(data) % blockSize; pad != 0 {
			buf.Write(make([]byte, blockSize-pad))
		}
	}
}

// buildHeader constructs one 512-byte ustar header.
func buildHeader(name string, dir bool, size int64, mtime time.Time) []byte {
	h := make([]byte, blockSize)

	if dir {
		if !strings.HasSuffix(name, "/") {
			name += "/"
		}
		size = 0
	}
	copy(h[offName:offName+lenName], name)

	mode := int64(modeFile)
	if dir {
		mode = modeDir
	}
	putOctal(h[offMode:offMode+8], mode)
	putOctal(h[offUID:offUID+8], 0)
	putOctal(h[offGID:offGID+8], 0)
	putOctal(h[offSize:offSize+12], size)
	putOctal(h[offMtime:offMtime+12], mtime.Unix())

	if dir {
		h[offTypeflag] = typeDir
	} else {
		h[offTypeflag] = typeFile
	}

	copy(h[offMagic:], "ustar\x0000")
	copy(h[offUname:offUname+32], "root")
	copy(h[offGname:offGname+32], "root")

	// Checksum: sum of all header bytes with the checksum field read as
	// spaces, written back as 6 octal digits, NUL, space.
	for i := offChksum; i < offChksum+8; i++ {
		h[i] = ' '
	}
	var sum int64
	for _, b := range h {
		sum += int64(b)
	}
	copy(h[offChksum:], fmt.Sprintf("%06o\x00 ", sum))

	return h
}

// putOctal writes v as zero-padded octal ASCII with a trailing NUL.
func putOctal(field []byte, v int64) {
	s := strconv.FormatInt(v, 8)
	n := len(field) - 1
	for i := 0; i < n-len(s); i++ {
		field[i] = '0'
	}
	copy(field[n-len(s):n], s)
	field[n] = 0
}

// parseOctal reads an octal ASCII field, tolerating leading/trailing spaces
// and NUL termination.
func parseOctal(field []byte) (int64, error) {
	s := strings.Trim(string(field), " \x00")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 8, 64)
	if err != nil {
		return 0, fmt.Errorf("bad octal field %q", s)
	}
	return v, nil
}

// ListTar parses the entry headers of a (possibly gzip-wrapped) tar stream
// in append order.
func ListTar(data []byte) ([]Entry, error) {
	return scanTar(data, false)
}

// DecodeTar parses headers and bodies.
func DecodeTar(data []byte) ([]Entry, error) {
	return scanTar(data, true)
}

func scanTar(data []byte, withData bool) ([]Entry, error) {
	data, err := maybeGunzip(data)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	off := 0
	for {
		if off+blockSize > len(data) {
			if off == len(data) {
				// Stream ended without the zero-block marker; accept.
				return entries, nil
			}
			return nil, fmt.Errorf("truncated archive at offset %d", off)
		}
		block := data[off : off+blockSize]
		if isZeroBlock(block) {
			return entries, nil
		}

		e, size, err := parseHeader(block)
		if err != nil {
			return nil, err
		}
		off += blockSize

		if !e.Dir {
			end := off + int(size)
			if end > len(data) {
				return nil, fmt.Errorf("truncated entry %s", e.Name)
			}
			if withData {
				e.Data = append([]byte(nil), data[off:end]...)
			}
			off = end
			if pad := int(size) % blockSize; pad != 0 {
				off += blockSize - pad
			}
		}
		entries = append(entries, e)
	}
}

func parseHeader(block []byte) (Entry, int64, error) {
	var e Entry

	want, err := parseOctal(block[offChksum : offChksum+8])
	if err != nil {
		return e, 0, fmt.Errorf("malformed header: %w", err)
	}
	var sum int64
	for i, b := range block {
		if i >= offChksum && i < offChksum+8 {
			sum += ' '
		} else {
			sum += int64(b)
		}
	}
	if sum != want {
		return e, 0, fmt.Errorf("header checksum mismatch: got %d, want %d", sum, want)
	}

	name := string(bytes.TrimRight(block[offName:offName+lenName], "\x00"))
	if name == "" {
		return e, 0, fmt.Errorf("malformed header: empty name")
	}
	size, err := parseOctal(block[offSize : offSize+12])
	if err != nil {
		return e, 0, fmt.Errorf("malformed header: %w", err)
	}
	mt, err := parseOctal(block[offMtime : offMtime+12])
	if err != nil {
		return e, 0, fmt.Errorf("malformed header: %w", err)
	}

	e.Dir = block[offTypeflag] == typeDir || strings.HasSuffix(name, "/")
	e.Name = strings.TrimSuffix(name, "/")
	e.Size = size
	e.ModTime = time.Unix(mt, 0)
	if e.Dir {
		e.Size = 0
	}
	return e, size, nil
}

func isZeroBlock(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func maybeGunzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return out, nil
}

// ExtractTar decodes data and writes every entry under destDir through one
// bulk store call. It returns the app paths written, in archive order.
func (c *Codec) ExtractTar(ctx context.Context, data []byte, destDir string) ([]string, error) {
	entries, err := DecodeTar(data)
	if err != nil {
		return nil, err
	}
	files := make([]store.File, 0, len(entries))
	written := make([]string, 0, len(entries))
	for _, e := range entries {
		ap := vpath.Resolve(destDir, e.Name)
		f := store.File{Path: ap, UpdatedAt: e.ModTime.UTC()}
		if e.Dir {
			f.Kind = store.KindFolder
		} else {
			f.Kind = store.KindFile
			if IsText(e.Name, e.Data) {
				f.Content = string(e.Data)
			} else {
				f.IsBinary = true
				f.Data = e.Data
			}
		}
		files = append(files, f)
		written = append(written, ap)
	}
	if err := c.store.CreateBulk(ctx, c.project, files); err != nil {
		return nil, err
	}
	return written, nil
}
