package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/thermogrid/pkg/heatmap"
	"github.com/matzehuels/thermogrid/pkg/pipeline"
)

// Explorer styles
var (
	exploreLabelStyle   = lipgloss.NewStyle().Foreground(colorGray).Width(5)
	exploreTooltipStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
	exploreHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	exploreCell       = "█"
	exploreCursor     = "◆"
	exploreLegendSize = 40
	exploreLabelWidth = 5
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var src sourceFlags
	opts := pipeline.DefaultOptions()
	ch := &opts.Chart

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the heatmap interactively in the terminal",
		Long: `Browse the heatmap in the terminal.

Each column is one year and each row one month. Move the cursor with the
arrow keys (or h/j/k/l) to show the tooltip for the cell under it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.cfg().applyTo(&opts, cmd.Flags())
			src.apply(&opts)
			if err := opts.ValidateForFetch(); err != nil {
				return err
			}
			if err := opts.Chart.Validate(); err != nil {
				return err
			}
			cs := c.cacheSettingsFrom(cmd, src.noCache, src.redisURL)
			return c.runExplore(cmd.Context(), opts, cs)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&ch.Color.Palette, "palette", ch.Color.Palette, "color palette: "+strings.Join(heatmap.PaletteNames(), ", "))
	cmd.Flags().BoolVar(&ch.Color.Reverse, "reverse", ch.Color.Reverse, "map the warmest temperature to the start of the palette")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options, cs cacheSettings) error {
	runner, err := c.newRunner(ctx, cs)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Loading dataset...")
	spinner.enter(stageFetch, "Fetching "+opts.Source()+"...")
	spinner.Start()
	loaded, err := runner.Fetch(ctx, opts)
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.enter(stageMount, fmt.Sprintf("Mounting %d records...", loaded.Dataset.Len()))
	view, ix, err := mountInteractive(loaded, opts)
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Stop()

	p := tea.NewProgram(newExploreModel(view, ix), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// mountInteractive mounts a chart and returns its view with live hover state.
func mountInteractive(loaded *pipeline.Loaded, opts pipeline.Options) (*heatmap.View, *heatmap.Interaction, error) {
	opts.SetDefaults()
	chart, err := heatmap.NewChart(opts.Chart)
	if err != nil {
		return nil, nil, err
	}
	if err := chart.Mount(loaded.Dataset); err != nil {
		return nil, nil, err
	}
	view, err := chart.View()
	if err != nil {
		return nil, nil, err
	}
	ix, err := chart.Interaction()
	if err != nil {
		return nil, nil, err
	}
	return view, ix, nil
}

// =============================================================================
// exploreModel - Interactive heatmap browser
// =============================================================================

// exploreModel shows one column per year and one row per month. The cursor
// drives the chart's Interaction the same way pointer hover does in SVG.
type exploreModel struct {
	view  *heatmap.View
	ix    *heatmap.Interaction
	years []int
	cells map[[2]int]int // (year, month 1-12) → mark index

	col, row int // cursor: index into years, 0-based month
	offset   int // first visible year column
	width    int // terminal width
}

func newExploreModel(view *heatmap.View, ix *heatmap.Interaction) exploreModel {
	m := exploreModel{
		view:  view,
		ix:    ix,
		cells: make(map[[2]int]int, len(view.Marks)),
		width: 80,
	}
	seen := make(map[int]bool)
	for i, mk := range view.Marks {
		key := [2]int{mk.Record.Year, mk.Record.Month}
		m.cells[key] = i // later marks paint over earlier ones
		if !seen[mk.Record.Year] {
			seen[mk.Record.Year] = true
			m.years = append(m.years, mk.Record.Year)
		}
	}
	sort.Ints(m.years)
	m.hover()
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.ix.OnExit()
			return m, tea.Quit
		case "left", "h":
			m.col--
		case "right", "l":
			m.col++
		case "up", "k":
			m.row--
		case "down", "j":
			m.row++
		case "pgup":
			m.col -= m.visibleColumns()
		case "pgdown":
			m.col += m.visibleColumns()
		case "home", "g":
			m.col = 0
		case "end", "G":
			m.col = len(m.years) - 1
		default:
			return m, nil
		}
		m.clamp()
		m.hover()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.clamp()
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.view.Title))
	b.WriteString("\n\n")

	if len(m.years) == 0 {
		b.WriteString(StyleDim.Render("No records to show."))
		b.WriteString("\n\n")
		b.WriteString(exploreHelpStyle.Render("q quit"))
		return b.String()
	}

	end := min(m.offset+m.visibleColumns(), len(m.years))
	for month := 0; month < heatmap.MonthCount; month++ {
		b.WriteString(exploreLabelStyle.Render(heatmap.MonthName(month)[:3]))
		for col := m.offset; col < end; col++ {
			b.WriteString(m.renderCell(col, month))
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", exploreLabelWidth))
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d", m.years[m.offset])))
	b.WriteString(StyleDim.Render(fmt.Sprintf(" … %d", m.years[end-1])))
	b.WriteString("\n\n")

	b.WriteString(m.renderLegend())
	b.WriteString("\n\n")

	if tip := m.ix.Current(); tip.Visible {
		b.WriteString(exploreTooltipStyle.Render(tip.Text()))
	} else {
		b.WriteString(exploreTooltipStyle.Render(StyleDim.Render(fmt.Sprintf("%d: no record for %s",
			m.years[m.col], heatmap.MonthName(m.row)))))
	}
	b.WriteString("\n")
	b.WriteString(exploreHelpStyle.Render("←/→ year  ↑/↓ month  pgup/pgdn page  g/G first/last  q quit"))
	return b.String()
}

func (m exploreModel) renderCell(col, month int) string {
	idx, ok := m.cells[[2]int{m.years[col], month + 1}]
	if !ok {
		return " "
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.view.Marks[idx].Fill))
	if col == m.col && month == m.row {
		return style.Reverse(true).Render(exploreCursor)
	}
	return style.Render(exploreCell)
}

// renderLegend samples the legend buckets into a fixed-width ramp.
func (m exploreModel) renderLegend() string {
	buckets := m.view.Legend.Buckets
	if len(buckets) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", exploreLabelWidth))
	first, last := buckets[0], buckets[len(buckets)-1]
	b.WriteString(StyleDim.Render(fmt.Sprintf("%.1f ", first.Value)))
	for i := 0; i < exploreLegendSize; i++ {
		bk := buckets[i*len(buckets)/exploreLegendSize]
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(bk.Fill)).Render(exploreCell))
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf(" %.1f%s", last.Value, m.view.Tooltip.Unit)))
	return b.String()
}

// visibleColumns is the number of year columns that fit the terminal.
func (m exploreModel) visibleColumns() int {
	return max(1, m.width-exploreLabelWidth-1)
}

// clamp keeps the cursor in range and scrolls it into view.
func (m *exploreModel) clamp() {
	m.col = max(0, min(m.col, len(m.years)-1))
	m.row = max(0, min(m.row, heatmap.MonthCount-1))
	visible := m.visibleColumns()
	if m.col < m.offset {
		m.offset = m.col
	}
	if m.col >= m.offset+visible {
		m.offset = m.col - visible + 1
	}
	m.offset = max(0, min(m.offset, max(0, len(m.years)-visible)))
}

// hover enters the mark under the cursor, or exits when the cell is empty.
func (m *exploreModel) hover() {
	if len(m.years) == 0 {
		m.ix.OnExit()
		return
	}
	if idx, ok := m.cells[[2]int{m.years[m.col], m.row + 1}]; ok {
		m.ix.OnEnter(m.view.Marks[idx])
		return
	}
	m.ix.OnExit()
}
