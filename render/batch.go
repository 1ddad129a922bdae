package render

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"rotword/archive"
	"rotword/state"
)

type sourceKind int

const (
	sourcePage sourceKind = iota
	sourceDir
	sourceArchive
)

func (k sourceKind) String() string {
	switch k {
	case sourceDir:
		return "directory"
	case sourceArchive:
		return "archive"
	default:
		return "page"
	}
}

// kindOf decides how source is rendered: directory tree, zip archive of
// pages or single page.
func kindOf(src string) (sourceKind, error) {
	if src == stdio {
		return sourcePage, nil
	}
	fi, err := os.Stat(src)
	if err != nil {
		return sourcePage, fmt.Errorf("unable to access input: %w", err)
	}
	if fi.IsDir() {
		return sourceDir, nil
	}
	if !fi.Mode().IsRegular() {
		return sourcePage, fmt.Errorf("input is not a regular file: %s", src)
	}
	zipped, err := isArchiveFile(src)
	if err != nil {
		return sourcePage, err
	}
	if zipped {
		return sourceArchive, nil
	}
	return sourcePage, nil
}

// isArchiveFile checks content signature, extension does not matter.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("unable to check input type: %w", err)
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("unable to check input type: %w", err)
	}
	return filetype.Is(head[:n], "zip"), nil
}

// isPageName reports whether file is picked up when rendering directories
// and archives.
func isPageName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xhtml", ".xht":
		return true
	}
	return false
}

// renderer applies the same widgets to every page of a run and keeps tally.
type renderer struct {
	cmd       *cli.Command
	env       *state.LocalEnv
	log       *zap.Logger
	report    func(string, ...zap.Field)
	widgets   []Widget
	overwrite bool

	pages  int
	failed int
	errs   error
	inert  error
}

// renderPage renders single page. name identifies page in logs and in the
// debug report, origin is used to detect format and to copy input.
func (r *renderer) renderPage(ctx context.Context, name, origin string, data []byte, dst string) error {
	r.pages++
	env := r.env

	// input goes to the report first, so it is there when page cannot be parsed
	if origin == stdio || !fileExists(origin) {
		env.Rpt.StoreData("input/"+name, data)
	} else if err := env.Rpt.StoreCopy("input/"+name, origin); err != nil {
		r.log.Warn("Unable to store input in the report", zap.String("page", name), zap.Error(err))
	}

	if err := checkDestination(dst, r.overwrite); err != nil {
		return err
	}
	format, err := selectFormat(r.cmd.String("format"), env.Cfg.Document.Format, name)
	if err != nil {
		return err
	}

	var rendered bytes.Buffer
	res, err := process(ctx, bytes.NewReader(data), &rendered, format, r.widgets, env, r.log)
	if err != nil {
		return err
	}
	if env.Rpt != nil {
		for i, e := range res.Effects {
			env.Rpt.StoreData(fmt.Sprintf("effects/%s/widget-%d.txt", name, i+1), []byte(e.String()))
		}
	}

	// destination is created only for successfully rendered page
	if err := writeDestination(r.cmd, dst, rendered.Bytes()); err != nil {
		return err
	}
	if dst != "" && dst != stdio {
		env.Rpt.Store("output/"+name, dst)
	}

	if err := res.Err(); err != nil {
		r.inert = multierr.Append(r.inert, fmt.Errorf("%s: %w", name, err))
	}
	r.report("Page rendered", zap.String("page", name), zap.Stringer("format", format), zap.Int("active", res.Active()), zap.Int("inert", len(res.Effects)-res.Active()), zap.Strings("styles", res.Styles))
	return nil
}

// renderBatchPage renders page found in directory or archive. Failure of a
// single page does not stop the run.
func (r *renderer) renderBatchPage(ctx context.Context, name, origin string, data []byte, dst string) {
	if err := r.renderPage(ctx, name, origin, data, dst); err != nil {
		r.failed++
		r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", name, err))
		r.log.Error("Unable to render page", zap.String("page", name), zap.Error(err))
	}
}

// renderDir renders every page of directory tree keeping relative layout
// under dst. Archives found in the tree are rendered into a directory named
// after the archive.
func (r *renderer) renderDir(ctx context.Context, dir, dst string) error {
	out, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			r.log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			// do not render our own results when destination is inside source
			if abs, err := filepath.Abs(p); err == nil && abs == out {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		zipped, err := isArchiveFile(p)
		if err != nil {
			r.log.Warn("Skipping file", zap.String("file", p), zap.Error(err))
			return nil
		}
		if zipped {
			stem := strings.TrimSuffix(rel, filepath.Ext(rel))
			if err := r.renderArchive(ctx, p, filepath.ToSlash(rel), filepath.Join(dst, stem)); err != nil {
				r.failed++
				r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", rel, err))
				r.log.Error("Unable to render archive", zap.String("file", p), zap.Error(err))
			}
			return nil
		}
		if !isPageName(p) {
			r.log.Debug("Skipping file, not a page", zap.String("file", p))
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			r.failed++
			r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", rel, err))
			r.log.Error("Unable to read page", zap.String("file", p), zap.Error(err))
			return nil
		}
		r.renderBatchPage(ctx, filepath.ToSlash(rel), p, data, filepath.Join(dst, rel))
		return nil
	})
}

// renderArchive renders pages stored in zip archive into dst. prefix is
// prepended to page names in logs and in the report, for archives found in
// directory it is archive path, so names never clash with real files.
func (r *renderer) renderArchive(ctx context.Context, file, prefix, dst string) error {
	return archive.Walk(file, isPageName, func(f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := path.Join(prefix, f.Name)
		rc, err := f.Open()
		if err != nil {
			r.failed++
			r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", name, err))
			r.log.Error("Unable to open page in archive", zap.String("archive", file), zap.String("page", f.Name), zap.Error(err))
			return nil
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			r.failed++
			r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", name, err))
			r.log.Error("Unable to read page in archive", zap.String("archive", file), zap.String("page", f.Name), zap.Error(err))
			return nil
		}
		r.renderBatchPage(ctx, name, "", data, filepath.Join(dst, filepath.FromSlash(f.Name)))
		return nil
	})
}

func checkDestination(dst string, overwrite bool) error {
	if len(dst) == 0 || dst == stdio || overwrite {
		return nil
	}
	if fileExists(dst) {
		return fmt.Errorf("output file already exists: %s", dst)
	}
	return nil
}

func fileExists(name string) bool {
	if name == "" {
		return false
	}
	_, err := os.Stat(name)
	return err == nil
}
