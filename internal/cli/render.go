package cli

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vastmap/pkg/render"
	"github.com/matzehuels/vastmap/pkg/tmap"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // SVG output path
	noLabels bool    // omit leaf name labels
	fontSize float64 // label font size
}

// renderCommand creates the render command for drawing TMAP documents.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{fontSize: 10}

	cmd := &cobra.Command{
		Use:   "render <tmap.json>",
		Short: "Render a TMAP document to SVG",
		Long: `Render a TMAP document (produced by 'layout') to SVG.

One box is drawn per leaf, colored by the name of its parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit leaf labels")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", opts.fontSize, "label font size")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	st := startStage(log.FromContext(cmd.Context()), "render")

	doc, err := tmap.ReadFile(input)
	if err != nil {
		st.failed(err)
		return err
	}

	renderOptions := []render.Option{render.WithFontSize(opts.fontSize)}
	if opts.noLabels {
		renderOptions = append(renderOptions, render.WithoutLabels())
	}
	svg := render.RenderSVG(doc, renderOptions...)

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if err := writeFile(output, svg); err != nil {
		return err
	}

	st.done("Rendered %s", doc.Source)
	printSuccess("Render complete")
	printFile(output)
	return nil
}
