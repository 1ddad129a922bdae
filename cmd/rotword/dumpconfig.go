package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"rotword/config"
	"rotword/state"
)

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "dumpconfig",
		Usage: "Writes configuration in YAML: embedded defaults or the one in effect",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "write embedded defaults instead of configuration in effect"},
		},
		OnUsageError: usageErrorHandler,
		Action:       dumpConfig,
		ArgsUsage:    "[DESTINATION]",
		CustomHelpTemplate: fmt.Sprintf(`%s
DESTINATION:
    file to write configuration to, STDOUT when absent

Configuration in effect is embedded defaults overlaid with values from the file
given with --config. It is a good starting point for a custom configuration.
`, cli.CommandHelpTemplate),
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("dumpconfig")

	if extra := cmd.Args().Slice(); len(extra) > 1 {
		log.Warn("Only one destination is expected", zap.Strings("ignoring", extra[1:]))
	}

	kind, data := "actual", []byte(nil)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get %s configuration: %w", kind, err)
	}

	var out io.Writer = os.Stdout
	if w := cmd.Root().Writer; w != nil {
		out = w
	}
	dst := cmd.Args().First()
	if len(dst) > 0 {
		f, er := os.Create(dst)
		if er != nil {
			return fmt.Errorf("unable to create configuration file: %w", er)
		}
		defer func() {
			if er := f.Close(); er != nil && err == nil {
				err = er
			}
		}()
		out = f
	}

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	if len(dst) > 0 {
		log.Info("Configuration written", zap.String("kind", kind), zap.String("file", dst))
	}
	return nil
}
