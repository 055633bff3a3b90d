package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/observability"
	"github.com/matzehuels/vastmap/pkg/reconcile"
	"github.com/matzehuels/vastmap/pkg/store"
	"github.com/matzehuels/vastmap/pkg/tmap"
	"github.com/matzehuels/vastmap/pkg/treemap"
	"github.com/matzehuels/vastmap/pkg/vast"
)

// Runner executes the pipeline.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner, and the same validated source tree, with different options.
type Runner struct {
	// Engine lays out trees. When nil, a squarified engine sized from the
	// run options is used.
	Engine treemap.Engine
	Caps   Capabilities
	Logger *log.Logger
	// WarnLevel is the level size inconsistencies are logged at during
	// reconciliation. Callers that print Result.Warnings lower it to debug.
	WarnLevel log.Level
	// Now stamps serialized documents; defaults to time.Now.
	Now func() time.Time
}

// NewRunner creates a runner. A nil engine selects the squarified engine and
// a nil logger discards output.
func NewRunner(engine treemap.Engine, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Engine:    engine,
		Logger:    logger,
		WarnLevel: log.WarnLevel,
		Now:       time.Now,
	}
}

// Layout lays out root under weight. Each call builds a fresh hierarchy and
// invokes the engine exactly once; engine errors are returned unchanged.
func (r *Runner) Layout(ctx context.Context, root *vast.Node, weight treemap.WeightFunc) (*treemap.Node, error) {
	engine := r.Engine
	if engine == nil {
		engine = treemap.Squarify{Width: DefaultWidth, Height: DefaultHeight}
	}
	return engine.Layout(ctx, root, weight)
}

// Execute runs load → validate → reconcile → layout → serialize and, when
// requested and supported, render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Wants(FormatSVG) && !r.Caps.HasRenderer {
		return nil, errors.New(errors.ErrCodeInvalidInput, "svg output requires a renderer")
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
		Options:   opts,
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Load and validate
	loadStart := time.Now()
	doc, err := r.load(opts)
	if err != nil {
		return nil, err
	}
	err = vast.Validate(doc)
	observability.Pipeline().OnValidate(ctx, opts.Source, err)
	if err != nil {
		return nil, err
	}
	result.Source = doc
	if canonical, err := json.Marshal(doc); err == nil {
		result.SourceHash = store.Hash(canonical)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	logger.Debug("loaded document", "source", opts.Source, "duration", result.Stats.LoadTime)

	// Stage 2: Reconcile
	weights := reconcile.Reconcile(doc.Root, reconcile.WithLogger(logger), reconcile.WithLogLevel(r.WarnLevel))
	result.Weights = weights
	result.Warnings = weights.Warnings()
	result.Stats.NodeCount = weights.Len()
	result.Stats.Total = weights.Total()
	observability.Pipeline().OnReconcile(ctx, weights.Len(), len(result.Warnings))

	// Stage 3: Layout
	weight, err := WeightFor(opts.Mode, weights)
	if err != nil {
		return nil, err
	}
	engine := r.Engine
	if engine == nil {
		engine = opts.engine()
	}
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Mode, weights.Len())
	root, err := engine.Layout(ctx, doc.Root, weight)
	result.Stats.LayoutTime = time.Since(layoutStart)
	observability.Pipeline().OnLayoutComplete(ctx, opts.Mode, result.Stats.LayoutTime, err)
	if err != nil {
		return nil, err
	}
	result.Layout = root
	result.Stats.LeafCount = len(root.Leaves())
	logger.Info("computed layout",
		"mode", opts.Mode,
		"nodes", result.Stats.NodeCount,
		"total", result.Stats.Total,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Serialize
	serializeStart := time.Now()
	result.Document = tmap.Wrap(tmap.Serialize(root), opts.Source, r.now())
	data, err := tmap.Marshal(result.Document)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize")
	}
	result.Artifacts[FormatJSON] = data
	result.Stats.SerializeTime = time.Since(serializeStart)
	observability.Pipeline().OnSerialize(ctx, opts.Source, len(data))

	// Stage 5: Render
	if opts.Wants(FormatSVG) {
		renderStart := time.Now()
		result.Artifacts[FormatSVG] = renderSVG(result.Document)
		result.Stats.RenderTime = time.Since(renderStart)
		logger.Debug("rendered svg", "bytes", len(result.Artifacts[FormatSVG]), "duration", result.Stats.RenderTime)
	}

	return result, nil
}

func (r *Runner) load(opts Options) (*vast.Document, error) {
	if opts.Document != nil {
		return opts.Document, nil
	}
	return vast.ImportFile(opts.Input)
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
