package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/citytour/pkg/pipeline"
)

// renderCommand creates the render command that draws a tour diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      matrixFlags
		formatsStr string
		output     string
		hideCosts  bool
		showMatrix bool
	)

	cmd := &cobra.Command{
		Use:   "render [matrix]",
		Short: "Draw the tour of a cost matrix with Graphviz",
		Long: `Draw the tour of a cost matrix with Graphviz.

The tour is computed (or taken from the cache) like in 'solve' and drawn as a
circular diagram with the start city highlighted. Use --show-matrix to draw
the unused connections of the matrix as well.

Examples:
  citytour render routes.csv --start Paris
  citytour render routes.csv -f svg,png,dot -o out/tour`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			opts, err := c.options(args, &flags)
			if err != nil {
				return err
			}
			opts.Formats = formats
			opts.HideCosts = hideCosts
			opts.ShowMatrix = showMatrix
			return c.runRender(cmd.Context(), opts, flags.noCache, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&hideCosts, "hide-costs", false, "omit leg costs from the labels")
	cmd.Flags().BoolVar(&showMatrix, "show-matrix", false, "draw unused matrix connections in the background")
	_ = cmd.RegisterFlagCompletionFunc("format",
		cobra.FixedCompletions([]string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatDOT}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runRender executes the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering tour...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     opts.MatrixPath,
		output:    output,
		cacheHit:  res.CacheInfo.TourHit && res.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}
	printKeyValue("Route", routeLine(res.Tour))
	printStats(res.Stats.CityCount, res.Stats.EdgeCount, res.CacheInfo.TourHit)
	return nil
}

// artifactWriteParams describes rendered outputs to be written to disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes every rendered format to its own file. A single
// format goes to output verbatim; several share the base path of output.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)

	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output was rendered", format)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	status := "Rendered"
	if p.cacheHit {
		status = "Rendered (cached)"
	}
	printSuccess("%s", status)
	for _, path := range paths {
		printFile(path)
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, .dot), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeTo opens path with openOutput and hands it to write.
func writeTo(path string, write func(io.Writer) error) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
