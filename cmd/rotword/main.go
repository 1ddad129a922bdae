package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"rotword/config"
	"rotword/misc"
	"rotword/page"
	"rotword/render"
	"rotword/state"
)

// initializeAppContext runs after command line is parsed and before any
// command action: configuration, debug report and logs are set up here.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help or version only
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)
	cfgPath := cmd.String("config")

	cfg, err := config.LoadConfiguration(cfgPath)
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	env.Cfg = cfg

	if cmd.Bool("debug") {
		if env.Rpt, err = cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug report: %w", err)
		}
	}

	if env.Log, err = cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()
	reportConfig(env, cfgPath)

	env.Log.Debug("Starting",
		zap.String("version", misc.GetVersion()),
		zap.String("git", misc.GetGitHash()),
		zap.String("go", runtime.Version()),
		zap.Strings("args", os.Args),
		zap.Bool("defaults", len(cfgPath) == 0))
	if env.Rpt != nil {
		env.Log.Info("Debug report requested", zap.String("archive", env.Rpt.Name()))
	}
	return ctx, nil
}

// reportConfig puts configuration in effect into debug report.
func reportConfig(env *state.LocalEnv, cfgPath string) {
	if env.Rpt == nil || len(cfgPath) == 0 {
		return
	}
	data, err := config.Dump(env.Cfg)
	if err != nil {
		env.Log.Warn("Unable to store configuration in the report", zap.String("file", cfgPath), zap.Error(err))
		return
	}
	env.Rpt.StoreData("config/"+filepath.Base(cfgPath), data)
}

// destroyAppContext finalizes debug report and removes crash log nobody wrote to.
func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Finished", zap.Duration("uptime", env.Uptime()), zap.Strings("args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()

	// from here on logs may already be in the report, problems go to stderr
	if er := env.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to finalize debug report: %w", er))
	}
	if env.Cfg == nil || len(env.Cfg.Logging.FileLogger.Destination) == 0 {
		return
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{}) //nolint:errcheck
	crash := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
	if fi, er := os.Stat(crash); er == nil && fi.Size() == 0 {
		err = multierr.Append(err, os.Remove(crash))
	}
	return
}

// errLogged is set when command error already went to the log, so main does
// not print it again.
var errLogged bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Error("Command failed", zap.Error(err))
		errLogged = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}

func wordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 3, Usage: "number of `WORDS` in the effect"},
		&cli.StringSliceFlag{Name: "words", Aliases: []string{"w"}, Usage: "actual `WORDS` (comma separated or repeated), overrides --count"},
		&cli.FloatFlag{Name: "duration", Usage: "cycle duration in `SECONDS` (default from configuration)"},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "injects rotating word effect into HTML pages",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Applies rotating word widgets to a page",
				OnUsageError: usageErrorHandler,
				Action:       render.Run,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "selector", Aliases: []string{"s"}, Usage: "container element `SELECTOR` (type, #id, .class, descendant and child combinators)"},
					&cli.StringSliceFlag{Name: "words", Aliases: []string{"w"}, Usage: "`WORDS` to rotate (comma separated or repeated)"},
					&cli.FloatFlag{Name: "duration", Usage: "cycle duration in `SECONDS` (default from configuration)"},
					&cli.StringFlag{Name: "format", Usage: "page `TYPE` (supported types: " + strings.Join(page.FormatNames(), ", ") + "), default - from file extension"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite existing destination"},
					&cli.BoolFlag{Name: "strict", Usage: "fail if any widget could not find its container"},
				},
				ArgsUsage: "SOURCE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to HTML or XHTML page, "-" - STDIN
    directory - all pages in the tree are rendered (zip archives included)
    zip archive - all pages in the archive are rendered

DESTINATION:
    path to resulting page, if absent or "-" - STDOUT
    directory for directory or archive SOURCE, relative layout is kept

Widgets from configuration file (document.widgets) are applied first, then the
one specified with --selector and --words.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "keyframes",
				Usage:        "Outputs generated keyframes stylesheet",
				OnUsageError: usageErrorHandler,
				Action:       render.Keyframes,
				Flags: append(wordFlags(),
					&cli.BoolFlag{Name: "base", Usage: "include base widget stylesheet"},
				),
			},
			{
				Name:         "schedule",
				Usage:        "Outputs timing of the animation cycle",
				OnUsageError: usageErrorHandler,
				Action:       render.Schedule,
				Flags: append(wordFlags(),
					&cli.StringFlag{Name: "format", Value: "table", Usage: "output `TYPE` (table, yaml)"},
					&cli.BoolFlag{Name: "plot", Usage: "draw stack offset over the cycle"},
				),
			},
			dumpConfigCommand(),
		},
	}

	// os.Exit skips deferred calls, so it must be the very last thing done
	err := app.Run(ctx, os.Args)
	stop()
	if err == nil {
		return
	}
	if !errLogged {
		fmt.Fprintf(os.Stderr, "%s: %v\n", misc.GetAppName(), err)
	}
	os.Exit(1)
}
