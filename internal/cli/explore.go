package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cgmap/pkg/pipeline"
	"github.com/matzehuels/cgmap/pkg/render"
)

const (
	maxExploreZoom  = 1 << 12
	exploreRows     = 12
	panStepsPerView = 16
)

var (
	exploreHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	exploreDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the interactive zoom and pan viewer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		output        string
		width, height float64
	)

	cmd := &cobra.Command{
		Use:   "explore [scene.json | URL]",
		Short: "Zoom and pan a map interactively, writing views on demand",
		Long: `Explore a map in the terminal.

Arrow keys pan around the sequence, + and - change the zoom. Panning keeps
the labels already placed; zooming lays them out again. Press w to write the
current view as SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := cfg.PipelineOptions()
			if cmd.Flags().Changed("width") {
				opts.Width = width
			}
			if cmd.Flags().Changed("height") {
				opts.Height = height
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			sc, err := c.loadScene(ctx, args[0], runner, false)
			if err != nil {
				return err
			}
			rd := render.New(sc.Map, render.WithConfig(opts.Render), render.WithLogger(c.Logger))
			if output == "" {
				output = basePath("", args[0])
			}

			m := newExploreModel(ctx, runner, rd, opts, output)
			_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "base path for written views")
	cmd.Flags().Float64Var(&width, "width", pipeline.DefaultWidth, "canvas width")
	cmd.Flags().Float64Var(&height, "height", pipeline.DefaultHeight, "canvas height")
	return cmd
}

// exploreModel is the bubbletea model for the interactive viewer. Every
// key press renders the view again through the shared runner.
type exploreModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	rd     *render.Renderer
	base   pipeline.Options
	output string

	Zoom   float64
	Center int

	Result  *render.Result
	Err     error
	Written string
}

func newExploreModel(ctx context.Context, runner *pipeline.Runner, rd *render.Renderer, base pipeline.Options, output string) exploreModel {
	m := exploreModel{
		ctx:    ctx,
		runner: runner,
		rd:     rd,
		base:   base,
		output: output,
		Zoom:   1,
	}
	m.redraw(false)
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := m.rd.Map().SequenceLength
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.Center = wrapPosition(m.Center-m.panStep(), n)
		m.redraw(true)
	case "right", "l":
		m.Center = wrapPosition(m.Center+m.panStep(), n)
		m.redraw(true)
	case "+", "=":
		m.Zoom = min(m.Zoom*2, maxExploreZoom)
		m.redraw(false)
	case "-":
		m.Zoom = max(m.Zoom/2, 1)
		m.redraw(false)
	case "0":
		m.Zoom = 1
		m.redraw(false)
	case "w":
		m.write()
	}
	return m, nil
}

// panStep moves the centre by a fraction of what the view shows.
func (m exploreModel) panStep() int {
	n := m.rd.Map().SequenceLength
	return max(1, int(float64(n)/(m.Zoom*panStepsPerView)))
}

func wrapPosition(p, n int) int {
	if n <= 0 {
		return 0
	}
	return ((p % n) + n) % n
}

func (m exploreModel) options(format string, reuse bool) pipeline.Options {
	opts := m.base
	opts.Formats = []string{format}
	opts.Zoom = m.Zoom
	opts.Center = m.Center
	opts.Reuse = reuse
	return opts
}

func (m *exploreModel) redraw(reuse bool) {
	_, res, err := m.runner.RenderWith(m.ctx, m.rd, m.options(pipeline.FormatJSON, reuse))
	m.Result, m.Err = res, err
}

// write saves the view on screen. It reuses the current labels so the file
// matches what the table shows.
func (m *exploreModel) write() {
	artifacts, _, err := m.runner.RenderWith(m.ctx, m.rd, m.options(pipeline.FormatSVG, true))
	if err != nil {
		m.Err = err
		return
	}
	path := fmt.Sprintf("%s.z%g.c%d.svg", m.output, m.Zoom, m.Center)
	if err := os.WriteFile(path, artifacts[pipeline.FormatSVG], 0o644); err != nil {
		m.Err = err
		return
	}
	m.Written = path
}

func (m exploreModel) View() string {
	var b strings.Builder

	title := m.rd.Map().Title
	if title == "" {
		title = "Map"
	}
	b.WriteString(StyleHighlight.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(exploreDimStyle.Render("←/→ pan  +/- zoom  0 reset  w write svg  q quit"))
	b.WriteString("\n\n")

	status := fmt.Sprintf("zoom %g×  ·  center %d of %d", m.Zoom, m.Center, m.rd.Map().SequenceLength)
	if r := m.Result; r != nil {
		status += fmt.Sprintf("  ·  %d/%d labels", r.Placed, r.Total)
		if r.Reused {
			status += "  ·  " + styleCached.Render("reused")
		}
	}
	b.WriteString(StyleValue.Render(status))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error() + "\n")
		return b.String()
	}

	var rows [][]string
	if m.Result != nil {
		for _, lb := range m.Result.FeatureLabels() {
			if len(rows) == exploreRows {
				break
			}
			rows = append(rows, []string{lb.Text, fmt.Sprintf("%.0f", lb.X), fmt.Sprintf("%.0f", lb.Y)})
		}
	}
	if len(rows) == 0 {
		b.WriteString(exploreDimStyle.Render("  no labels in view"))
		b.WriteString("\n")
	} else {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Label", "X", "Y").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return exploreHeaderStyle
				}
				if col == 0 {
					return StyleValue
				}
				return exploreDimStyle
			})
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if m.Written != "" {
		b.WriteString("\n" + styleIconSuccess.Render(iconSuccess) + " wrote " + m.Written + "\n")
	}
	return b.String()
}
