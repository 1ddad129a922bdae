package render

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"rotword/css"
	"rotword/rotator"
	"rotword/state"
)

// Keyframes prints generated stylesheet for given number of words without
// touching any page.
func Keyframes(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("keyframes")

	n, _, err := wordCount(cmd)
	if err != nil {
		return err
	}
	sched, err := rotator.NewSchedule(n)
	if err != nil {
		return err
	}

	sheet := &css.Stylesheet{}
	if cmd.Bool("base") {
		if err := loadExtraStyle(env, log); err != nil {
			return err
		}
		sheet.Merge(rotator.BaseStylesheet(env.ExtraStyle))
	}
	name := rotator.AnimationName(n)
	sheet.AddKeyframes(sched.Keyframes(name))

	log.Debug("Keyframes generated", zap.String("animation", name), zap.Int("words", n), zap.Bool("base", cmd.Bool("base")))

	if _, err := sheet.WriteTo(writer(cmd)); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}
	return nil
}
