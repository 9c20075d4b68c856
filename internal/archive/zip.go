package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/vos-cloud/vshell/internal/store"
	"github.com/vos-cloud/vshell/internal/vpath"
)

// CreateZip builds a zip archive from the given paths (globs allowed). With
// recursive set, directories are walked; otherwise a directory argument is
// an error.
func (c *Codec) CreateZip(ctx context.Context, cwd string, paths []string, recursive bool) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	seen := make(map[string]bool)
	for _, p := range paths {
		expanded, err := c.exp.Expand(ctx, cwd, p)
		if err != nil {
			return nil, err
		}
		for _, ap := range expanded {
			if err := c.zipPath(ctx, zw, ap, recursive, seen); err != nil {
				return nil, err
			}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Codec) zipPath(ctx context.Context, zw *zip.Writer, ap string, recursive bool, seen map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := c.store.GetByPath(ctx, c.project, ap)
	if err != nil {
		return err
	}
	if f != nil && !f.IsDir() {
		return c.zipFile(zw, ap, f.Bytes(), seen)
	}

	kids, err := c.store.ListByPrefix(ctx, c.project, ap)
	if err != nil {
		return err
	}
	if f == nil && len(kids) == 0 {
		return fmt.Errorf("%s: No such file or directory", ap)
	}
	if !recursive {
		return fmt.Errorf("%s: Is a directory", ap)
	}
	for _, k := range kids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if k.IsDir() {
			continue
		}
		if err := c.zipFile(zw, k.Path, k.Bytes(), seen); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) zipFile(zw *zip.Writer, ap string, data []byte, seen map[string]bool) error {
	if seen[ap] {
		return nil
	}
	seen[ap] = true
	w, err := zw.Create(vpath.Normalize(ap)[1:])
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ListZip returns the member names of a zip archive in central directory
// order.
func ListZip(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// ExtractZip writes every member under destDir through one bulk store call
// and returns the app paths written.
func (c *Codec) ExtractZip(ctx context.Context, data []byte, destDir string) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}

	files := make([]store.File, 0, len(zr.File))
	written := make([]string, 0, len(zr.File))
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ap := vpath.Resolve(destDir, zf.Name)
		f := store.File{Path: ap, UpdatedAt: zf.Modified.UTC()}
		if zf.FileInfo().IsDir() {
			f.Kind = store.KindFolder
		} else {
			rc, err := zf.Open()
			if err != nil {
				return nil, fmt.Errorf("zip %s: %w", zf.Name, err)
			}
			content, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("zip %s: %w", zf.Name, err)
			}
			f.Kind = store.KindFile
			if IsText(zf.Name, content) {
				f.Content = string(content)
			} else {
				f.IsBinary = true
				f.Data = content
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
