package rotator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rotword/css"
	"rotword/styles"
)

const (
	DefaultDuration    = 12.0
	DefaultBaseID      = "rotating-words-base"
	DefaultKeyframesID = "rotating-words-keyframes"
)

// KeyframesScope defines how many keyframes resources a document may hold.
type KeyframesScope int

const (
	// ScopeShared keeps single keyframes resource per document, every
	// synthesis replaces it.
	ScopeShared KeyframesScope = iota
	// ScopePerCount keeps one resource per word count, so effects with
	// different number of words do not evict each other.
	ScopePerCount
)

func (s KeyframesScope) String() string {
	switch s {
	case ScopePerCount:
		return "per-count"
	default:
		return "shared"
	}
}

// ParseKeyframesScope converts name to KeyframesScope.
func ParseKeyframesScope(name string) (KeyframesScope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "shared":
		return ScopeShared, nil
	case "per-count":
		return ScopePerCount, nil
	}
	return ScopeShared, fmt.Errorf("unknown keyframes scope %q", name)
}

// Options control effect construction.
type Options struct {
	Duration    float64
	Palette     []string
	BaseID      string
	KeyframesID string
	Scope       KeyframesScope
	Extra       *css.Stylesheet
	Log         *zap.Logger
}

// Option modifies Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Duration:    DefaultDuration,
		Palette:     DefaultPalette,
		BaseID:      DefaultBaseID,
		KeyframesID: DefaultKeyframesID,
		Scope:       ScopeShared,
		Log:         zap.NewNop(),
	}
}

// WithDuration sets total cycle duration in seconds.
func WithDuration(seconds float64) Option {
	return func(o *Options) {
		o.Duration = seconds
	}
}

// WithPalette replaces default palette, empty palette keeps the default.
func WithPalette(colors ...string) Option {
	return func(o *Options) {
		if len(colors) > 0 {
			o.Palette = append([]string(nil), colors...)
		}
	}
}

// WithStyleIDs sets identifiers of base and keyframes resources, empty
// values keep defaults. Identical identifiers are ignored: keyframes
// replacement would remove base style.
func WithStyleIDs(base, keyframes string) Option {
	return func(o *Options) {
		b, k := o.BaseID, o.KeyframesID
		if id := styles.NormalizeID(base); id != "" {
			b = id
		}
		if id := styles.NormalizeID(keyframes); id != "" {
			k = id
		}
		if b == k {
			return
		}
		o.BaseID, o.KeyframesID = b, k
	}
}

// WithKeyframesScope sets keyframes resource scope.
func WithKeyframesScope(scope KeyframesScope) Option {
	return func(o *Options) {
		o.Scope = scope
	}
}

// WithExtraStyle adds rules superimposed on base stylesheet.
func WithExtraStyle(sheet *css.Stylesheet) Option {
	return func(o *Options) {
		o.Extra = sheet
	}
}

// WithLogger sets logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Options) {
		if log != nil {
			o.Log = log
		}
	}
}
