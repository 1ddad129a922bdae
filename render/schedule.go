package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"rotword/config"
	"rotword/rotator"
	"rotword/state"
)

type windowReport struct {
	Index    int     `yaml:"index"`
	Word     string  `yaml:"word,omitempty"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"`
	StartSec float64 `yaml:"start_sec"`
	EndSec   float64 `yaml:"end_sec"`
	Offset   float64 `yaml:"offset_em"`
}

type scheduleReport struct {
	Animation  string         `yaml:"animation"`
	Words      int            `yaml:"words"`
	Duration   float64        `yaml:"duration"`
	Step       float64        `yaml:"step"`
	Hold       float64        `yaml:"hold"`
	Transition float64        `yaml:"transition"`
	Windows    []windowReport `yaml:"windows"`
	Final      float64        `yaml:"final_em"`
}

// Schedule prints timing of the animation cycle.
func Schedule(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("schedule")

	n, words, err := wordCount(cmd)
	if err != nil {
		return err
	}
	sched, err := rotator.NewSchedule(n)
	if err != nil {
		return err
	}
	rpt := newScheduleReport(sched, words, effectiveDuration(cmd, env.Cfg))

	w := writer(cmd)
	switch format := strings.ToLower(cmd.String("format")); format {
	case "", "table":
		err = writeTable(w, rpt)
	case "yaml":
		err = yaml.NewEncoder(w).Encode(rpt)
	default:
		return fmt.Errorf("unknown schedule output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("unable to write schedule: %w", err)
	}

	if cmd.Bool("plot") {
		if _, err := fmt.Fprintln(w, plotSchedule(sched, rpt, env.Cfg.Schedule)); err != nil {
			return fmt.Errorf("unable to write plot: %w", err)
		}
	}
	log.Debug("Schedule printed", zap.Int("words", n), zap.Float64("duration", rpt.Duration))
	return nil
}

func newScheduleReport(s *rotator.Schedule, words []string, duration float64) *scheduleReport {
	rpt := &scheduleReport{
		Animation:  rotator.AnimationName(s.Words),
		Words:      s.Words,
		Duration:   duration,
		Step:       round(s.Step),
		Hold:       round(s.Hold),
		Transition: round(s.Transition),
		Windows:    make([]windowReport, 0, len(s.Windows)),
		Final:      round(s.Final),
	}
	for i, w := range s.Windows {
		wr := windowReport{
			Index:    i,
			Start:    round(w.Start),
			End:      round(w.End),
			StartSec: round(rotator.Seconds(w.Start, duration)),
			EndSec:   round(rotator.Seconds(w.End, duration)),
			Offset:   round(w.Offset),
		}
		if i < len(words) {
			wr.Word = words[i]
		}
		rpt.Windows = append(rpt.Windows, wr)
	}
	return rpt
}

func writeTable(w io.Writer, rpt *scheduleReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d words, %gs cycle, step %.2f%%, hold %.2f%%, transition %.2f%%\n",
		rpt.Animation, rpt.Words, rpt.Duration, rpt.Step, rpt.Hold, rpt.Transition)
	fmt.Fprintf(&b, "%3s  %-16s %8s %8s %9s %9s %9s\n", "#", "word", "start%", "end%", "start(s)", "end(s)", "offset")
	for _, win := range rpt.Windows {
		fmt.Fprintf(&b, "%3d  %-16s %8.2f %8.2f %9.3f %9.3f %8.4gem\n",
			win.Index, win.Word, win.Start, win.End, win.StartSec, win.EndSec, win.Offset)
	}
	fmt.Fprintf(&b, "%3s  %-16s %8.2f %8s %9.3f %9s %8.4gem\n", "", "", 100.0, "", rpt.Duration, "", rpt.Final)
	_, err := io.WriteString(w, b.String())
	return err
}

// plotSchedule draws stack offset over one cycle.
func plotSchedule(s *rotator.Schedule, rpt *scheduleReport, cfg config.ScheduleConfig) string {
	samples := cfg.PlotWidth
	if samples < 2 {
		samples = 100
	}
	data := make([]float64, samples)
	for i := range data {
		data[i] = s.OffsetAt(float64(i) * 100 / float64(samples-1))
	}
	return asciigraph.Plot(data,
		asciigraph.Height(cfg.PlotHeight),
		asciigraph.Width(cfg.PlotWidth),
		asciigraph.Caption(fmt.Sprintf("%s offset (em) over %gs", rpt.Animation, rpt.Duration)))
}

func round(v float64) float64 {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		return 0
	}
	return v
}
