// Package pipeline turns VAST documents into TMAP treemaps.
//
// This package implements the validate → reconcile → layout → serialize
// pipeline shared by the CLI commands and the HTTP server. The layout
// engine is injected through [treemap.Engine]; the pipeline never tiles
// rectangles itself.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Input: "vast.json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifacts[pipeline.FormatJSON])
//
// Or run the layout stage alone on an already validated tree:
//
//	weights := reconcile.Reconcile(doc.Root)
//	root, err := runner.Layout(ctx, doc.Root, pipeline.AggregateWeight(weights))
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/reconcile"
	"github.com/matzehuels/vastmap/pkg/store"
	"github.com/matzehuels/vastmap/pkg/tmap"
	"github.com/matzehuels/vastmap/pkg/treemap"
	"github.com/matzehuels/vastmap/pkg/vast"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultInput is the VAST file read when no input is given.
	DefaultInput = "vast.json"

	// DefaultWidth is the default canvas width (960 minus side margins).
	DefaultWidth = 940.0

	// DefaultHeight is the default canvas height (500 minus top and bottom margins).
	DefaultHeight = 450.0

	// DefaultMode is the default weighting mode.
	DefaultMode = ModeAggregate
)

// Format constants for output artifacts.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Input is the path of the VAST document. Ignored when Document is set.
	Input string `json:"input,omitempty"`
	// Document is an already decoded VAST document. It is still validated.
	Document *vast.Document `json:"-"`
	// Source is recorded in the TMAP document; defaults to Input.
	Source string `json:"source,omitempty"`

	Mode   string  `json:"mode,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Ratio  float64 `json:"ratio,omitempty"`

	// Formats lists the artifacts to produce. JSON is always produced.
	Formats []string `json:"formats,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Capabilities describes optional features of the host. The pipeline
// consults it instead of probing its environment.
type Capabilities struct {
	// HasRenderer enables SVG artifacts.
	HasRenderer bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs.
	RunID string

	// Document is the serialized TMAP document.
	Document *tmap.Document

	// Source is the validated input document.
	Source *vast.Document

	// SourceHash is the content hash of the canonical JSON form of Source.
	SourceHash string

	// Weights holds the reconciled weight of every source node.
	Weights *reconcile.Weights

	// Layout is the laid-out tree before serialization.
	Layout *treemap.Node

	// Warnings lists size inconsistencies found during reconciliation.
	Warnings []reconcile.Warning

	// Artifacts contains the encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// Options are the resolved options of the run.
	Options Options
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	LeafCount     int
	Total         float64
	LoadTime      time.Duration
	LayoutTime    time.Duration
	SerializeTime time.Duration
	RenderTime    time.Duration
}

// StoreKey returns the key under which the result is published.
func (r *Result) StoreKey() string {
	return store.DocumentKey(r.SourceHash, r.Options.KeyOpts())
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Input == "" && o.Document == nil {
		o.Input = DefaultInput
	}
	if o.Source == "" {
		o.Source = o.Input
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Call SetDefaults first.
func (o *Options) Validate() error {
	if !ValidModes[o.Mode] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q (must be one of: aggregate, size, count)", o.Mode)
	}
	if !(o.Width > 0) || !(o.Height > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "canvas must be positive, got %vx%v", o.Width, o.Height)
	}
	if o.Ratio < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ratio must not be negative, got %v", o.Ratio)
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, svg)", f)
		}
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Wants reports whether format was requested.
func (o *Options) Wants(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// KeyOpts returns the store key options for these layout parameters.
func (o *Options) KeyOpts() store.DocumentKeyOpts {
	return store.DocumentKeyOpts{
		Mode:   o.Mode,
		Width:  o.Width,
		Height: o.Height,
		Ratio:  o.Ratio,
	}
}

func (o *Options) engine() treemap.Engine {
	return treemap.Squarify{Width: o.Width, Height: o.Height, Ratio: o.Ratio}
}
