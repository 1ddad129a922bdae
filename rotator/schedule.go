package rotator

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"rotword/css"
)

const (
	// LineStep is vertical distance between words in em, equal to item line
	// height so exactly one word is visible through the wrapper.
	LineStep = 1.2

	HoldRatio       = 0.8
	TransitionRatio = 0.2

	AnimationPrefix = "wordSlide"
)

// ErrNoWords is returned when schedule is requested for empty word list.
var ErrNoWords = errors.New("word list is empty")

// Window is a hold interval: stack stays at Offset between Start and End
// percent of the cycle.
type Window struct {
	Start  float64
	End    float64
	Offset float64
}

// Schedule is the timing of one animation cycle for N words. Gaps between
// windows are transitions interpolated by the browser.
type Schedule struct {
	Words      int
	Step       float64
	Hold       float64
	Transition float64
	Windows    []Window
	// Final is the offset at 100%, one step past the last word. Since the
	// display list is doubled it shows the first word again.
	Final float64
}

// NewSchedule computes schedule for n words.
func NewSchedule(n int) (*Schedule, error) {
	if n <= 0 {
		return nil, ErrNoWords
	}

	step := 100 / float64(n)
	s := &Schedule{
		Words:      n,
		Step:       step,
		Hold:       step * HoldRatio,
		Transition: step * TransitionRatio,
		Windows:    make([]Window, 0, n),
		Final:      offset(n),
	}
	for i := range n {
		start := float64(i) * step
		s.Windows = append(s.Windows, Window{Start: start, End: start + s.Hold, Offset: offset(i)})
	}
	return s, nil
}

// AnimationName returns keyframes name for n words.
func AnimationName(n int) string {
	return fmt.Sprintf("%s-%d", AnimationPrefix, n)
}

// Keyframes converts schedule to @keyframes block: one frame per hold window
// plus the final boundary.
func (s *Schedule) Keyframes(name string) *css.Keyframes {
	kf := &css.Keyframes{Name: name, Frames: make([]css.Keyframe, 0, len(s.Windows)+1)}
	for _, w := range s.Windows {
		kf.Frames = append(kf.Frames, css.Keyframe{
			Selectors:  []string{formatPercent(w.Start), formatPercent(w.End)},
			Properties: translate(w.Offset),
		})
	}
	kf.Frames = append(kf.Frames, css.Keyframe{
		Selectors:  []string{"100%"},
		Properties: translate(s.Final),
	})
	return kf
}

func offset(i int) float64 {
	return -float64(i) * LineStep
}

func translate(v float64) map[string]css.Value {
	return css.Props("transform", "translateY("+formatEm(v)+")")
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

// formatEm rounds away float noise (3*1.2 is 3.5999999999999996).
func formatEm(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // no "-0em"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "em"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}

// OffsetAt returns stack offset in em at percent p of the cycle assuming
// linear movement during transitions. Timing function is ignored.
func (s *Schedule) OffsetAt(p float64) float64 {
	p = math.Max(0, math.Min(100, p))
	for i, w := range s.Windows {
		if p <= w.End {
			return w.Offset
		}
		next, nextStart := s.Final, 100.0
		if i+1 < len(s.Windows) {
			next, nextStart = s.Windows[i+1].Offset, s.Windows[i+1].Start
		}
		if p < nextStart {
			return w.Offset + (next-w.Offset)*(p-w.End)/(nextStart-w.End)
		}
	}
	return s.Final
}

// Seconds converts percent of the cycle into seconds for given duration.
func Seconds(p, duration float64) float64 {
	return p * duration / 100
}
