// Package render implements program commands working with pages and effects.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"rotword/page"
	"rotword/rotator"
	"rotword/state"
)

// stdio is used as source or destination name for standard streams.
const stdio = "-"

// Result summarizes processing of a single page.
type Result struct {
	Effects []*rotator.Effect
	Styles  []string
}

// Active returns number of effects which found their containers.
func (r *Result) Active() int {
	count := 0
	for _, e := range r.Effects {
		if e.Active() {
			count++
		}
	}
	return count
}

// Err combines errors of inert effects.
func (r *Result) Err() (err error) {
	for i, e := range r.Effects {
		if !e.Active() {
			err = multierr.Append(err, fmt.Errorf("widget %d (%s): %w", i+1, e.Selector(), e.Err()))
		}
	}
	return
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input page has been specified")
	}
	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	// validate forced format once, pages are checked individually later
	if _, err := selectFormat(cmd.String("format"), env.Cfg.Document.Format, src); err != nil {
		return err
	}
	widgets, err := collectWidgets(cmd, env.Cfg)
	if err != nil {
		return err
	}
	if err := loadExtraStyle(env, log); err != nil {
		return err
	}

	r := &renderer{
		cmd:       cmd,
		env:       env,
		log:       log,
		widgets:   widgets,
		overwrite: cmd.Bool("overwrite"),
	}

	kind, err := kindOf(src)
	if err != nil {
		return err
	}
	if kind != sourcePage && (len(dst) == 0 || dst == stdio) {
		return fmt.Errorf("destination directory is required to render %s", kind)
	}

	// console info goes to stdout, keep it clean when page is written there
	r.report = log.Info
	if nameOf(dst) == "STDOUT" {
		r.report = log.Debug
	}

	r.report("Processing starting", zap.String("source", src), zap.String("destination", nameOf(dst)), zap.Stringer("kind", kind), zap.Int("widgets", len(widgets)))
	defer func(start time.Time) {
		r.report("Processing completed", zap.Duration("elapsed", time.Since(start)), zap.Int("pages", r.pages), zap.Int("failed", r.failed))
	}(time.Now())

	switch kind {
	case sourceDir:
		err = r.renderDir(ctx, src, dst)
	case sourceArchive:
		err = r.renderArchive(ctx, src, "", dst)
	default:
		var data []byte
		if data, err = readSource(src); err != nil {
			return err
		}
		name := filepath.Base(src)
		if src == stdio {
			name = "stdin"
		}
		err = r.renderPage(ctx, name, src, data, dst)
	}
	if err != nil {
		return err
	}

	if r.failed > 0 {
		return fmt.Errorf("%d of %d pages were not rendered: %w", r.failed, r.pages, r.errs)
	}
	if r.pages == 0 {
		log.Warn("Nothing to render", zap.String("source", src))
	}
	if cmd.Bool("strict") && r.inert != nil {
		return fmt.Errorf("some widgets were not applied: %w", r.inert)
	}
	return nil
}

// process loads page, applies widgets and writes result. It does not depend
// on command line.
func process(ctx context.Context, in io.Reader, out io.Writer, format page.Format, widgets []Widget, env *state.LocalEnv, log *zap.Logger) (*Result, error) {
	doc, err := page.Load(in, format, log)
	if err != nil {
		return nil, fmt.Errorf("unable to load page: %w", err)
	}

	res := &Result{Effects: make([]*rotator.Effect, 0, len(widgets))}
	for _, w := range widgets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Effects = append(res.Effects, rotator.New(doc, w.Selector, w.Words, effectOptions(env, w, log)...))
	}
	res.Styles = doc.Styles().IDs()

	doc.Indent(env.Cfg.Document.Indent)
	if _, err := doc.WriteTo(out); err != nil {
		return nil, fmt.Errorf("unable to write page: %w", err)
	}
	return res, nil
}

// selectFormat decides page format: command line first, then configuration,
// then file extension.
func selectFormat(flag, configured, src string) (page.Format, error) {
	for _, name := range []string{flag, configured} {
		if len(name) == 0 {
			continue
		}
		return page.ParseFormat(name)
	}
	return page.FormatFromPath(src), nil
}

func readSource(src string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if src == stdio {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read input page: %w", err)
	}
	return data, nil
}

func writeDestination(cmd *cli.Command, dst string, data []byte) error {
	if len(dst) == 0 || dst == stdio {
		if _, err := writer(cmd).Write(data); err != nil {
			return fmt.Errorf("unable to write page: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	return nil
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func nameOf(dst string) string {
	if len(dst) == 0 || dst == stdio {
		return "STDOUT"
	}
	return dst
}
