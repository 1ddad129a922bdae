package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"rotword/config"
	"rotword/css"
	"rotword/rotator"
	"rotword/state"
)

// Widget describes single rotating word effect to be applied to a page.
type Widget struct {
	Selector string
	Words    []string
	// Duration of zero means configured effect duration.
	Duration float64
}

// collectWidgets returns configured widgets followed by the one specified on
// command line.
func collectWidgets(cmd *cli.Command, cfg *config.Config) ([]Widget, error) {
	widgets := make([]Widget, 0, len(cfg.Document.Widgets)+1)
	for _, w := range cfg.Document.Widgets {
		widgets = append(widgets, Widget{Selector: w.Selector, Words: w.Words, Duration: w.Duration})
	}

	if sel := strings.TrimSpace(cmd.String("selector")); len(sel) > 0 {
		widgets = append(widgets, Widget{
			Selector: sel,
			Words:    cleanWords(cmd.StringSlice("words")),
			Duration: cmd.Float("duration"),
		})
	} else if cmd.IsSet("words") {
		return nil, errors.New("words were specified without container selector")
	}

	if len(widgets) == 0 {
		return nil, errors.New("no widgets to apply, use --selector and --words or configuration file")
	}
	return widgets, nil
}

func cleanWords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, w := range in {
		if w = strings.TrimSpace(w); len(w) > 0 {
			out = append(out, w)
		}
	}
	return out
}

// effectOptions converts configuration into effect options.
func effectOptions(env *state.LocalEnv, w Widget, log *zap.Logger) []rotator.Option {
	cfg := env.Cfg.Effect

	scope, err := rotator.ParseKeyframesScope(cfg.KeyframesScope)
	if err != nil {
		log.Warn("Bad keyframes scope, using default", zap.Stringer("scope", scope), zap.Error(err))
	}
	duration := cfg.Duration
	if w.Duration > 0 {
		duration = w.Duration
	}

	return []rotator.Option{
		rotator.WithDuration(duration),
		rotator.WithPalette(cfg.Palette...),
		rotator.WithStyleIDs(cfg.BaseID, cfg.KeyframesID),
		rotator.WithKeyframesScope(scope),
		rotator.WithExtraStyle(env.ExtraStyle),
		rotator.WithLogger(log),
	}
}

// loadExtraStyle parses configured stylesheet once per program run.
func loadExtraStyle(env *state.LocalEnv, log *zap.Logger) error {
	path := env.Cfg.Effect.StylesheetPath
	if env.ExtraStyle != nil || len(path) == 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet from %q: %w", path, err)
	}
	env.ExtraStyle = css.NewParser(log).Parse(data, path)
	if err := env.Rpt.StoreCopy("stylesheet/"+filepath.Base(path), path); err != nil {
		log.Warn("Unable to store stylesheet in the report", zap.Error(err))
	}

	log.Debug("Extra stylesheet loaded",
		zap.String("path", path),
		zap.Int("rules", len(env.ExtraStyle.Rules())),
		zap.Int("warnings", len(env.ExtraStyle.Warnings)))
	return nil
}

// wordCount returns number of words for commands which do not need a page.
func wordCount(cmd *cli.Command) (int, []string, error) {
	if cmd.IsSet("words") {
		words := cleanWords(cmd.StringSlice("words"))
		if len(words) == 0 {
			return 0, nil, rotator.ErrNoWords
		}
		return len(words), words, nil
	}
	n := cmd.Int("count")
	if n <= 0 {
		return 0, nil, fmt.Errorf("%w: count must be positive, got %d", rotator.ErrNoWords, n)
	}
	return n, nil, nil
}

// effectiveDuration returns duration requested on command line or
// configured one.
func effectiveDuration(cmd *cli.Command, cfg *config.Config) float64 {
	if d := cmd.Float("duration"); d > 0 {
		return d
	}
	return cfg.Effect.Duration
}
