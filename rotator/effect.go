// Package rotator implements rotating word effect: a clipped stack of words
// moved by generated CSS keyframes.
package rotator

import (
	"errors"
	"fmt"
	"math"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"rotword/css"
	"rotword/page"
)

// ErrNoContainer is recorded when selector does not resolve to an element.
var ErrNoContainer = errors.New("container element not found")

// Effect is a rotating word widget bound to a container element of a
// document. Construction performs complete setup, effect without container
// stays inert. Effect is not safe for concurrent use.
type Effect struct {
	id       uuid.UUID
	doc      *page.Document
	selector string
	words    []string
	opts     Options
	log      *zap.Logger

	container *etree.Element
	stack     *etree.Element
	schedule  *Schedule
	animation string
	err       error
}

// New creates effect in container selected from doc. Failures are never
// returned: they are logged and available from Err.
func New(doc *page.Document, selector string, words []string, options ...Option) *Effect {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}

	e := &Effect{
		id:       uuid.New(),
		doc:      doc,
		selector: selector,
		words:    normalizeWords(words),
		opts:     opts,
	}
	e.log = opts.Log.Named("rotator").With(zap.Stringer("effect", e.id))

	if e.opts.BaseID == e.KeyframesID() {
		e.log.Warn("Base and keyframes styles share identifier, using defaults", zap.String("id", e.opts.BaseID))
		e.opts.BaseID, e.opts.KeyframesID = DefaultBaseID, DefaultKeyframesID
	}
	if d := e.opts.Duration; d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		e.log.Warn("Invalid cycle duration, using default", zap.Float64("requested", d), zap.Float64("default", DefaultDuration))
		e.opts.Duration = DefaultDuration
	}

	found, err := doc.Query(selector)
	switch {
	case err != nil:
		e.err = fmt.Errorf("unable to use container selector: %w", err)
	case len(found) == 0:
		e.err = fmt.Errorf("%w: %s", ErrNoContainer, selector)
	}
	if e.err != nil {
		e.log.Error("Element not found for selector", zap.String("selector", selector), zap.Error(e.err))
		return e
	}
	if len(found) > 1 {
		e.log.Warn("Selector matches several elements, using the first one", zap.String("selector", selector), zap.Int("matches", len(found)))
	}

	e.container = found[0]
	e.init()
	return e
}

func (e *Effect) init() {
	e.stack = buildMarkup(e.container, e.words, e.opts.Palette, e.id.String())
	e.ensureBaseStyle()

	if len(e.words) == 0 {
		e.log.Warn("Empty word list, keyframes are not generated", zap.String("selector", e.selector))
		e.schedule, e.animation = nil, ""
		return
	}
	_ = e.Synthesize()
}

func (e *Effect) ensureBaseStyle() {
	if e.doc.Styles().EnsureOnce(e.opts.BaseID, BaseStylesheet(e.opts.Extra).String()) {
		e.log.Debug("Base style installed", zap.String("id", e.opts.BaseID))
	}
}

// Refresh rebuilds markup and reinstalls styles.
func (e *Effect) Refresh() {
	if !e.Active() {
		e.log.Debug("Refresh of inert effect ignored")
		return
	}
	e.init()
}

// Synthesize computes keyframes for current words, replaces keyframes
// resource of the document and binds the animation to the stack.
func (e *Effect) Synthesize() error {
	if !e.Active() {
		return e.err
	}

	sched, err := NewSchedule(len(e.words))
	if err != nil {
		e.log.Warn("Unable to synthesize keyframes", zap.Error(err))
		return err
	}

	name := AnimationName(len(e.words))
	var sheet css.Stylesheet
	sheet.AddKeyframes(sched.Keyframes(name))

	id := e.KeyframesID()
	replaced := e.doc.Styles().Upsert(id, sheet.String())

	e.stack.CreateAttr("style", css.InlineStyle(
		css.Decl("animation-name", name),
		css.Decl("animation-duration", formatSeconds(e.opts.Duration)),
		css.Decl("animation-timing-function", Easing),
		css.Decl("animation-iteration-count", "infinite"),
	))
	e.schedule, e.animation = sched, name

	e.log.Debug("Keyframes installed",
		zap.String("id", id),
		zap.String("animation", name),
		zap.Float64("duration", e.opts.Duration),
		zap.Bool("replaced", replaced))
	return nil
}

// KeyframesID returns identifier of keyframes resource used by effect.
func (e *Effect) KeyframesID() string {
	if e.opts.Scope == ScopePerCount {
		return fmt.Sprintf("%s-%d", e.opts.KeyframesID, len(e.words))
	}
	return e.opts.KeyframesID
}

// Selector returns container selector effect was created with.
func (e *Effect) Selector() string {
	return e.selector
}

// BaseID returns identifier of base style resource.
func (e *Effect) BaseID() string {
	return e.opts.BaseID
}

// Active reports whether effect found its container.
func (e *Effect) Active() bool {
	return e.container != nil
}

// Err returns construction error of inert effect.
func (e *Effect) Err() error {
	return e.err
}

// ID returns unique effect id, also stored on the wrapper element.
func (e *Effect) ID() uuid.UUID {
	return e.id
}

// Words returns copy of the word list.
func (e *Effect) Words() []string {
	return append([]string(nil), e.words...)
}

// DisplayList returns rendered (doubled) word sequence.
func (e *Effect) DisplayList() []string {
	return DisplayList(e.words)
}

// Duration returns cycle duration in seconds.
func (e *Effect) Duration() float64 {
	return e.opts.Duration
}

// AnimationName returns name of bound keyframes, empty when nothing is bound.
func (e *Effect) AnimationName() string {
	return e.animation
}

// Schedule returns last synthesized schedule or nil.
func (e *Effect) Schedule() *Schedule {
	return e.schedule
}

// Stack returns animated element, nil for inert effect.
func (e *Effect) Stack() *etree.Element {
	return e.stack
}

func normalizeWords(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = norm.NFC.String(w)
	}
	return out
}
