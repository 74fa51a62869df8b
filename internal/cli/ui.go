package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/core/tour"
)

// Terminal palette. The start city uses the same gold as the diagram.
var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorGold  = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleNumber renders costs and bounds.
	StyleNumber  = lipgloss.NewStyle().Foreground(colorTeal)
	StyleWarning = lipgloss.NewStyle().Foreground(colorGold)

	styleStart       = lipgloss.NewStyle().Bold(true).Foreground(colorGold)
	styleOK          = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailed      = lipgloss.NewStyle().Foreground(colorRed)
	styleNote        = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleOK.Render("✓") + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleFailed.Render("✗") + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render("! " + fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleNote.Render("›") + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleNote.Width(12).Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }

// printStats prints the matrix size and whether the tour came from the cache.
func printStats(cityCount, edgeCount int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d cities", cityCount),
		fmt.Sprintf("%d connections", edgeCount),
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, "fresh")
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")))
}

// printTour prints the legs, the styled route and how far the cost lies
// above the lower bound.
func printTour(res *tour.Result) {
	printSuccess("Tour from %s", styleStart.Render(res.Start.Name))
	printNewline()
	fmt.Println(legTable(res.Edges))
	printNewline()

	printKeyValue("Route", routeView(res))
	printKeyValue("Total cost", StyleNumber.Render(fmt.Sprint(res.TotalCost)))
	printKeyValue("Lower bound", fmt.Sprint(res.LowerBound)+StyleDim.Render(boundGap(res.TotalCost, res.LowerBound)))
	if res.HasUpperBound {
		printKeyValue("Upper bound", fmt.Sprint(res.UpperBound))
	}
	printKeyValue("Mode", res.Mode.String())
	if n := res.Normalization; n.CostsOverwritten+n.EdgesAdded+n.DiagonalRemoved > 0 {
		printDetail("normalized: %d costs overwritten, %d reverse edges added, %d self-pairs removed",
			n.CostsOverwritten, n.EdgesAdded, n.DiagonalRemoved)
	}
}

// routeView renders the visiting order with the start city highlighted at
// both ends of a closed tour.
func routeView(res *tour.Result) string {
	arrow := StyleDim.Render(" → ")
	names := make([]string, 0, len(res.Cities)+1)
	for _, c := range res.Cities {
		if c.Equal(res.Start) {
			names = append(names, styleStart.Render(c.Name))
			continue
		}
		names = append(names, c.Name)
	}
	if res.IsClosed() {
		names = append(names, styleStart.Render(res.Start.Name))
	}
	return strings.Join(names, arrow)
}

// boundGap formats the relative distance of cost above lower, or nothing
// when the bound is zero.
func boundGap(cost, lower int64) string {
	if lower <= 0 {
		return ""
	}
	return fmt.Sprintf(" (tour is %.1f%% above)", float64(cost-lower)*100/float64(lower))
}

func legTable(edges []route.Edge) string {
	rows := make([][]string, len(edges))
	for i, e := range edges {
		rows[i] = []string{fmt.Sprint(i + 1), e.From.Name, e.To.Name, fmt.Sprint(e.Cost)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("#", "From", "To", "Cost").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 3:
				return StyleNumber
			case col == 0:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}
