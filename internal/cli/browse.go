package cli

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/pkg/board"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/pipeline"
	"github.com/feedwatch/sourcegrid/pkg/render/text"
	"github.com/feedwatch/sourcegrid/pkg/rss"
	"github.com/feedwatch/sourcegrid/pkg/tiles"
)

// termCellMinWidth is the narrowest grid cell in terminal columns, borders
// included.
const termCellMinWidth = 32

var (
	browseHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	browseErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var opts sourcesOpts

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through sources as a tile grid in the terminal",
		Long: `Page through sources as a tile grid in the terminal.

The column count follows the terminal width unless --columns is set.
Resizing the terminal repacks the current page without fetching it again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apperr.ValidateColumns(opts.columns); err != nil {
				return err
			}

			ctx := cmd.Context()
			e, err := c.openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			po := e.pipelineOptions()
			po.FeedID = opts.feedID
			po.CompanyID = opts.companyID
			po.Offset = opts.offset
			po.Columns = opts.columns
			if opts.limit > 0 {
				po.Limit = opts.limit
			}
			if err := po.ValidateForFetch(); err != nil {
				return err
			}

			p := tea.NewProgram(newBrowseModel(ctx, e.client, po),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&opts.feedID, "feed", 0, "only sources of this feed")
	flags.Int64Var(&opts.companyID, "company", 0, "only sources of this company")
	flags.IntVar(&opts.limit, "limit", 0, "sources per page (default from config)")
	flags.IntVar(&opts.offset, "offset", 0, "index of the first source")
	flags.IntVar(&opts.columns, "columns", 0, "fixed column count (default fits the terminal)")

	cmd.MarkFlagsMutuallyExclusive("feed", "company")
	_ = cmd.RegisterFlagCompletionFunc("feed", c.completeFeeds)
	_ = cmd.RegisterFlagCompletionFunc("company", c.completeCompanies)

	return cmd
}

// =============================================================================
// browseModel - Interactive grid pager
// =============================================================================

// pageMsg carries the result of a page fetch.
type pageMsg struct {
	page *rss.SourcePage
	err  error
}

// browseModel is the bubbletea model for paging through the tile grid.
type browseModel struct {
	ctx  context.Context
	src  pipeline.SourceLister
	opts pipeline.Options

	page    *rss.SourcePage
	err     error
	loading bool

	width  int
	height int
	scroll int
}

func newBrowseModel(ctx context.Context, src pipeline.SourceLister, opts pipeline.Options) browseModel {
	return browseModel{
		ctx:     ctx,
		src:     src,
		opts:    opts,
		loading: true,
		width:   80,
		height:  24,
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.fetch(false)
}

// fetch loads the page at m.opts.Offset.
func (m browseModel) fetch(refresh bool) tea.Cmd {
	ctx, src, opts := m.ctx, m.src, m.opts
	opts.Refresh = refresh
	return func() tea.Msg {
		page, err := pipeline.Fetch(ctx, src, opts)
		return pageMsg{page: page, err: err}
	}
}

// columns returns the fixed column count or the count fitting the terminal.
func (m browseModel) columns() int {
	if m.opts.Columns > 0 {
		return m.opts.Columns
	}
	return tiles.Columns(float64(m.width), 0, termCellMinWidth)
}

func (m browseModel) window() board.Window {
	if m.page == nil {
		return board.Window{}
	}
	return board.PageWindow(*m.page, m.opts.Limit)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.page = msg.page
		m.opts.Offset = msg.page.Offset
		m.scroll = 0

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "pgdown", "n":
			if w := m.window(); !m.loading && w.HasNext {
				m.opts.Offset = w.NextOffset
				m.loading = true
				return m, m.fetch(false)
			}
		case "left", "h", "pgup", "p":
			if w := m.window(); !m.loading && w.HasPrevious {
				m.opts.Offset = w.PreviousOffset
				m.loading = true
				return m, m.fetch(false)
			}
		case "r":
			if !m.loading {
				m.loading = true
				return m, m.fetch(true)
			}
		case "down", "j":
			m.scroll++
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Sources"))
	if m.loading {
		b.WriteString(browseHelpStyle.Render("  loading..."))
	}
	b.WriteString("\n")
	b.WriteString(browseHelpStyle.Render("←/→ page  ↑/↓ scroll  r refresh  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(browseErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	if m.page == nil {
		return b.String()
	}

	cols := m.columns()
	grid := pipeline.Grid(m.page, cols, m.opts.Limit)
	body := text.Render(grid, text.WithCellWidth(text.CellWidthFor(m.width, cols)))
	b.WriteString(m.viewport(body))
	return b.String()
}

// viewport returns the lines of body visible at the current scroll offset.
func (m browseModel) viewport(body string) string {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	visible := max(m.height-4, 1)
	start := min(m.scroll, max(len(lines)-visible, 0))
	end := min(start+visible, len(lines))
	return strings.Join(lines[start:end], "\n") + "\n"
}
