package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/thermogrid/pkg/pipeline"
)

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle renders chart titles and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders values next to a label.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning renders warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(10)

	styleCached = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh  = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a path that was written.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// field is one labeled line of a summary.
type field struct {
	label, value string
}

// datasetFields describes a loaded dataset: where it came from, its base
// temperature and, when it has records, its year span and temperature range.
// ok is false for a dataset with no records.
func datasetFields(l *pipeline.Loaded) (fields []field, ok bool) {
	ds := l.Dataset
	fields = []field{
		{"Source", l.Source},
		{"Base", fmt.Sprintf("%.2f°C", ds.BaseTemperature)},
	}
	e, ok := ds.Extent()
	if !ok {
		return fields, false
	}
	return append(fields,
		field{"Years", fmt.Sprintf("%d - %d", e.MinYear, e.MaxYear)},
		field{"Range", fmt.Sprintf("%.2f°C - %.2f°C", e.MinTemp, e.MaxTemp)},
	), true
}

func printDatasetSummary(l *pipeline.Loaded) {
	fields, ok := datasetFields(l)
	for _, f := range fields {
		fmt.Println(styleLabel.Render(f.label) + " " + StyleValue.Render(f.value))
	}
	if !ok {
		printWarning("Dataset has no records")
	}
}

// statsParts lists what a run produced and where it came from, for example
// "3153 records", "3153 marks", "dataset cached", "render fresh", "412ms".
// The render part is omitted for runs that stop after fetching.
func statsParts(s pipeline.Stats, info pipeline.CacheInfo, rendered bool) []string {
	parts := []string{fmt.Sprintf("%d records", s.Records)}
	if rendered {
		parts = append(parts, fmt.Sprintf("%d marks", s.Marks))
	}
	parts = append(parts, cacheState("dataset", info.FetchHit))
	if rendered {
		parts = append(parts, cacheState("render", info.RenderHit))
	}
	if d := s.FetchTime + s.MountTime + s.RenderTime; d > 0 {
		parts = append(parts, d.Round(time.Millisecond).String())
	}
	return parts
}

func cacheState(what string, hit bool) string {
	if hit {
		return what + " cached"
	}
	return what + " fresh"
}

// printStats prints statsParts on one dimmed line, highlighting cache hits.
func printStats(s pipeline.Stats, info pipeline.CacheInfo, rendered bool) {
	parts := statsParts(s, info, rendered)
	styled := make([]string, len(parts))
	for i, p := range parts {
		switch {
		case strings.HasSuffix(p, " cached"):
			styled[i] = styleCached.Render(p)
		case strings.HasSuffix(p, " fresh"):
			styled[i] = styleFresh.Render(p)
		default:
			styled[i] = StyleDim.Render(p)
		}
	}
	fmt.Println("  " + strings.Join(styled, StyleDim.Render(" · ")))
}
