package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vastmap/internal/server"
	"github.com/matzehuels/vastmap/pkg/vast"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [vast.json]",
		Short: "Serve treemap layouts over HTTP",
		Long: `Serve treemap layouts of a VAST document over HTTP.

The document is read and validated once, then laid out again on every
request so that clients can switch weighting modes:

  GET /tmap?mode=count       TMAP document
  GET /treemap.svg?mode=size rendered SVG (unless --render=false)
  GET /documents/{key}       a document published with 'layout --publish'
  GET /healthz`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	addConfigFlags(cmd)
	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := cfg.PipelineOptions()
	if len(args) > 0 {
		opts.Input = args[0]
	}
	opts.Source = opts.Input

	doc, err := vast.ImportFile(opts.Input)
	if err != nil {
		return err
	}

	st, err := c.openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(server.Config{
		Addr:     cfg.Serve.Addr,
		Runner:   c.newRunner(cfg),
		Document: doc,
		Options:  opts,
		Store:    st,
		Logger:   log.FromContext(ctx),
	})
	if err != nil {
		return err
	}

	printInfo("Serving %s on %s", StyleValue.Render(opts.Input), StyleLink.Render("http://localhost"+cfg.Serve.Addr))
	return srv.Serve(ctx)
}
