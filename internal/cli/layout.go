package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/pipeline"
	"github.com/matzehuels/vastmap/pkg/store"
)

// layoutFlags holds the layout flags that are not config keys.
type layoutFlags struct {
	output  string // TMAP output file; stdout when empty
	svg     string // optional SVG output file
	publish bool   // store the document and print its key
}

// addLayoutFlags registers the layout flags on cmd.
func addLayoutFlags(cmd *cobra.Command, lf *layoutFlags) {
	cmd.Flags().StringVarP(&lf.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&lf.svg, "svg", "", "also render the treemap to this SVG file")
	cmd.Flags().BoolVar(&lf.publish, "publish", false, "store the document in the configured store")
	addConfigFlags(cmd)
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [vast.json]",
		Short: "Lay out a VAST document as a TMAP treemap",
		Long: `Lay out a VAST document as a TMAP treemap.

The input defaults to vast.json in the working directory; files ending in
.toml are read as TOML. The TMAP document is written to stdout unless -o is
given. Declared sizes are reconciled with their children's sizes so that
every byte is counted once; nodes whose children exceed their declared size
are reported as warnings.

Weighting modes:
  aggregate  reconciled sizes (default)
  size       raw declared sizes
  count      every sized node counts as 1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args, lf)
		},
	}
	addLayoutFlags(cmd, &lf)
	return cmd
}

// runLayout runs the pipeline and writes its outputs.
func (c *CLI) runLayout(cmd *cobra.Command, args []string, lf layoutFlags) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := cfg.PipelineOptions()
	if len(args) > 0 {
		opts.Input = args[0]
	}
	opts.Logger = logger
	if lf.svg != "" {
		opts.Formats = []string{pipeline.FormatJSON, pipeline.FormatSVG}
	}

	// Open the store up front so a bad backend fails before any work.
	var st store.Store
	if lf.publish {
		if cfg.Store.Backend == store.BackendNone {
			return errors.New(errors.ErrCodeInvalidInput, "--publish requires a store (set --store or store.backend)")
		}
		if st, err = c.openStore(cfg); err != nil {
			return err
		}
		defer st.Close()
	}

	stg := startStage(logger, "layout")
	spinner := newSpinnerWithContext(ctx, "Laying out "+opts.Input+"...")
	spinner.Start()

	runner := c.newRunner(cfg)
	// Warnings are printed below; the reconciler only traces them.
	runner.WarnLevel = log.DebugLevel
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		stg.failed(err)
		return err
	}
	spinner.Stop()
	stg.done("Laid out %d nodes", result.Stats.NodeCount)
	logger.Debug("run complete", "run", result.RunID, "source_hash", result.SourceHash)

	for _, w := range result.Warnings {
		printWarning("%s declares %g but its children hold %g", w.Node.Name, w.Size, w.Children)
	}

	if lf.output == "" {
		if _, err := cmd.OutOrStdout().Write(result.Artifacts[pipeline.FormatJSON]); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write stdout")
		}
	} else {
		if err := writeFile(lf.output, result.Artifacts[pipeline.FormatJSON]); err != nil {
			return err
		}
		printSuccess("Layout complete")
		printFile(lf.output)
	}

	if lf.svg != "" {
		if err := writeFile(lf.svg, result.Artifacts[pipeline.FormatSVG]); err != nil {
			return err
		}
		printFile(lf.svg)
	}

	if st != nil {
		key, err := pipeline.Publish(ctx, st, result, cfg.Store.TTL)
		if err != nil {
			return err
		}
		printKeyValue("published", key)
	}

	printDetail("total %g · canvas %gx%g", result.Stats.Total, result.Options.Width, result.Options.Height)
	printStats(result.Stats.NodeCount, result.Stats.LeafCount, len(result.Warnings), result.Options.Mode)
	if lf.output != "" && lf.svg == "" && cfg.Render {
		printNewline()
		printNextStep("Render", "vastmap render "+lf.output)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
