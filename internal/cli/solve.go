package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/citytour/pkg/core/tour"
	cio "github.com/matzehuels/citytour/pkg/io"
)

// Result output formats of the solve command.
const (
	outputText = "text"
	outputJSON = "json"
	outputXLSX = "xlsx"
)

// solveCommand creates the solve command that optimizes a tour.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags  matrixFlags
		output string
		format string
		pick   bool
	)

	cmd := &cobra.Command{
		Use:   "solve [matrix]",
		Short: "Compute a tour through every city of a cost matrix",
		Long: `Compute a tour through every city of a cost matrix.

The matrix is a delimited file whose header row names the destinations and
whose data rows start with the origin, an Excel workbook in the same layout,
or a JSON edge list. Empty cells mean there is no direct connection.

Results are cached, so solving the same matrix again is instant.

Examples:
  citytour solve routes.csv --start Paris
  citytour solve routes.xlsx --mode asymmetric -f xlsx -o tour.xlsx
  citytour solve routes.csv --pick`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case outputText, outputJSON:
			case outputXLSX:
				if output == "" {
					return fmt.Errorf("xlsx output needs a file (-o)")
				}
			default:
				return fmt.Errorf("invalid output format: %s (must be 'text', 'json' or 'xlsx')", format)
			}
			return c.runSolve(cmd.Context(), args, &flags, pick, format, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the start city interactively")
	cmd.Flags().StringVarP(&format, "format", "f", outputText, "result format: text (default), json, xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to a file instead of stdout")
	_ = cmd.RegisterFlagCompletionFunc("format",
		cobra.FixedCompletions([]string{outputText, outputJSON, outputXLSX}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runSolve loads the matrix, optimizes and prints the tour.
func (c *CLI) runSolve(ctx context.Context, args []string, flags *matrixFlags, pick bool, format, output string) error {
	opts, err := c.options(args, flags)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	m, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.MatrixPath, err)
	}
	prog.done(fmt.Sprintf("Loaded %d cities, %d connections", m.CityCount(), m.Len()))

	if pick {
		city, ok, err := pickCity(m)
		if err != nil {
			return fmt.Errorf("start city picker: %w", err)
		}
		if !ok {
			printInfo("No city selected")
			return nil
		}
		opts.Start = city.Name
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Optimizing %d cities...", m.CityCount()))
	spinner.Start()

	res, cacheHit, err := runner.SolveWithCacheInfo(ctx, m, opts)
	if err != nil {
		spinner.StopWithError("Optimization failed")
		return fmt.Errorf("solve: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	switch format {
	case outputJSON:
		return writeTo(output, func(w io.Writer) error { return cio.WriteResultJSON(res, w) })
	case outputXLSX:
		if err := writeTo(output, func(w io.Writer) error { return cio.WriteResultXLSX(res, w) }); err != nil {
			return err
		}
		printSuccess("Tour written")
		printFile(output)
		return nil
	}

	if output != "" {
		if err := writeTo(output, func(w io.Writer) error {
			_, err := io.WriteString(w, routeLine(res)+"\n")
			return err
		}); err != nil {
			return err
		}
	}

	printTour(res)
	printStats(m.CityCount(), m.Len(), cacheHit)
	printNewline()
	printNextStep("Draw it", fmt.Sprintf("%s render %s --start %q", appName, opts.MatrixPath, res.Start.Name))
	return nil
}

// routeLine formats the tour as "A -> B -> C -> A: 42".
func routeLine(res *tour.Result) string {
	names := make([]string, 0, len(res.Cities)+1)
	for _, city := range res.Cities {
		names = append(names, city.String())
	}
	if res.IsClosed() {
		names = append(names, res.Start.String())
	}
	return fmt.Sprintf("%s: %d", strings.Join(names, " -> "), res.TotalCost)
}
