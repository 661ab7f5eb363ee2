package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waterfall/pkg/config"
	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/notify"
	"github.com/matzehuels/waterfall/pkg/surface"
)

// A terminal cell stands for pxPerCol by pxPerRow layout pixels.
const (
	pxPerCol = 10
	pxPerRow = 20
)

// viewChrome is the number of terminal rows used by the header and footer.
const viewChrome = 2

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		ff      feedFlags
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Scroll through a live masonry layout in the terminal",
		Long: `Open an infinite-scroll view of a feed.

The first batch is laid out when the terminal size is known. Scrolling to the
bottom loads the next batch, and resizing the terminal lays everything out
again unless a width is pinned in the config file.

Keys: ↑/↓ or j/k scroll, pgup/pgdn page, home/end jump, s column stats, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := ff.source(cmd, c.config.Feed)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), src, logFile)
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&logFile, "log-file", "", "write engine logs to this file while the view is open")

	return cmd
}

func (c *CLI) runView(ctx context.Context, src feed.Source, logFile string) error {
	// The terminal belongs to the view; logs go to a file or nowhere.
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := newLogger(w, c.Logger.GetLevel())

	m, err := newViewModel(ctx, c.config, src, masonry.WithLogger(logger))
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.err
}

// =============================================================================
// viewModel - Infinite-scroll viewer
// =============================================================================

// batchMsg carries a batch fetched from the feed.
type batchMsg struct {
	items []*masonry.Item
	err   error
}

// viewModel connects terminal events to the engine. Terminal resizes become
// HandleResize, scrolling becomes HandleScroll, and every load request is
// answered by a command that fetches the next batch.
type viewModel struct {
	ctx    context.Context
	board  *surface.Board
	engine *masonry.Engine
	src    *lockedSource
	batch  int

	queue     []*masonry.Item // first page, held until the terminal size is known
	requested int             // batch size of the last load request
	started   bool
	exhausted bool
	showStats bool
	err       error

	cols, rows int
}

func newViewModel(ctx context.Context, cfg *config.Config, src feed.Source, opts ...masonry.Option) (*viewModel, error) {
	m := &viewModel{
		ctx:   ctx,
		board: surface.NewBoard(cfg.Layout.Container, 0, 0),
		src:   &lockedSource{src: src},
		batch: cfg.Layout.BatchSize,
	}
	engine, err := masonry.New(m.board, cfg.EngineConfig(), opts...)
	if err != nil {
		return nil, err
	}
	engine.On(masonry.EventLoad, func(_ *notify.Notifier, args ...any) {
		m.requested = args[0].(int)
	})
	m.engine = engine
	return m, nil
}

func (m *viewModel) Init() tea.Cmd {
	return m.fetch(m.batch)
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)
	case batchMsg:
		return m, m.receive(msg)
	case tea.KeyMsg:
		page := m.board.ViewportHeight()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			return m, m.scroll(-pxPerRow)
		case "down", "j":
			return m, m.scroll(pxPerRow)
		case "pgup", "b":
			return m, m.scroll(-page)
		case "pgdown", " ", "f":
			return m, m.scroll(page)
		case "home", "g":
			return m, m.scroll(-m.board.ScrollOffset())
		case "end", "G":
			return m, m.scroll(m.board.ContentHeight())
		case "s":
			m.showStats = !m.showStats
		}
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return m, m.scroll(-3 * pxPerRow)
		case tea.MouseButtonWheelDown:
			return m, m.scroll(3 * pxPerRow)
		}
	}
	return m, nil
}

func (m *viewModel) resize(cols, rows int) tea.Cmd {
	m.cols, m.rows = cols, rows
	m.board.SetViewportHeight(float64(max(rows-viewChrome, 1) * pxPerRow))
	if m.engine.ResizeEnabled() {
		m.board.SetWidth(float64(cols * pxPerCol))
	}
	switch {
	case !m.started && len(m.queue) > 0:
		m.start()
	case m.started:
		if err := m.engine.HandleResize(m.ctx); err != nil {
			m.err = err
			return nil
		}
	}
	return m.load()
}

// receive adds a fetched batch to the board.
func (m *viewModel) receive(msg batchMsg) tea.Cmd {
	if msg.err != nil && msg.err != io.EOF {
		m.err = msg.err
		return nil
	}
	if len(msg.items) == 0 {
		m.exhausted = true
		return nil
	}
	if !m.started {
		m.queue = append(m.queue, msg.items...)
		if m.cols > 0 {
			m.start()
		}
		return m.load()
	}

	m.board.AppendItems(msg.items...)
	var err error
	if len(msg.items) == m.requested {
		err = m.engine.BatchReady(m.ctx)
	} else {
		// A short batch ends the feed; lay out the final page from scratch.
		m.exhausted = true
		err = m.engine.Init(m.ctx, masonry.Options{Resize: true})
	}
	if err != nil {
		m.err = err
		return nil
	}
	return m.load()
}

// start lays out the first page.
func (m *viewModel) start() {
	m.board.AppendItems(m.queue...)
	m.queue = nil
	var opts masonry.Options
	if m.engine.ResizeEnabled() {
		opts.Width = m.board.ContainerWidth()
	}
	if err := m.engine.Init(m.ctx, opts); err != nil {
		m.err = err
		return
	}
	m.started = true
}

func (m *viewModel) scroll(delta float64) tea.Cmd {
	m.board.ScrollBy(delta)
	return m.load()
}

// load asks the engine whether the viewport needs another batch.
func (m *viewModel) load() tea.Cmd {
	if !m.started || m.exhausted || m.err != nil {
		return nil
	}
	requested, err := m.engine.HandleScroll(m.ctx)
	if err != nil {
		m.err = err
		return nil
	}
	if !requested {
		return nil
	}
	return m.fetch(m.requested)
}

func (m *viewModel) fetch(n int) tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		items, err := src.Next(ctx, n)
		return batchMsg{items: items, err: err}
	}
}

// =============================================================================
// View
// =============================================================================

var viewHelpStyle = lipgloss.NewStyle().Foreground(colorDim)

func (m *viewModel) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	body := max(m.rows-viewChrome, 0)
	switch {
	case m.showStats && m.started:
		st := m.engine.Stats()
		items, _ := m.board.Items(m.board.ID())
		b.WriteString(lipgloss.NewStyle().MaxHeight(body).Render(
			columnTable(st.Heights, st.ItemWidth, columnCounts(items, st.Columns))))
		b.WriteString("\n")
	case m.started:
		b.WriteString(m.canvas(m.cols, body))
	default:
		b.WriteString(StyleDim.Render("loading..."))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(StyleWarning.Render("error: " + m.err.Error()))
	} else {
		b.WriteString(viewHelpStyle.Render("↑/↓ scroll  pgup/pgdn page  s stats  q quit"))
	}
	return b.String()
}

func (m *viewModel) header() string {
	st := m.engine.Stats()
	status := ""
	switch {
	case st.Loading:
		status = "  loading"
	case m.exhausted:
		status = "  end of feed"
	}
	return StyleTitle.Render("waterfall") + StyleDim.Render(fmt.Sprintf("  %d items  %d columns  %.0f/%.0fpx%s",
		m.board.Len(), st.Columns, m.board.ScrollOffset(), m.board.ContentHeight(), status))
}

// canvas draws the visible items as bordered cards on a cols×rows grid.
func (m *viewModel) canvas(cols, rows int) string {
	g := newGrid(cols, rows)
	top := m.board.ScrollOffset()
	for _, it := range m.board.Visible() {
		g.card(
			int(it.Left/pxPerCol),
			int((it.Top-top)/pxPerRow),
			int(it.Width/pxPerCol),
			int(it.Height/pxPerRow),
			it.ID, it.Column,
		)
	}
	return g.String()
}

// grid is a character canvas with one colour per cell.
type grid struct {
	cols, rows int
	cells      [][]rune
	colour     [][]int
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]rune, rows), colour: make([][]int, rows)}
	for y := range rows {
		g.cells[y] = []rune(strings.Repeat(" ", cols))
		g.colour[y] = make([]int, cols)
		for x := range g.colour[y] {
			g.colour[y][x] = -1
		}
	}
	return g
}

func (g *grid) set(x, y int, r rune, col int) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y][x] = r
	g.colour[y][x] = col
}

// card draws a rounded box with the item's id on its first inner line.
func (g *grid) card(x, y, w, h int, id string, col int) {
	if w < 2 || h < 2 {
		for dy := range max(h, 1) {
			for dx := range max(w, 1) {
				g.set(x+dx, y+dy, '█', col)
			}
		}
		return
	}
	border := lipgloss.RoundedBorder()
	runeOf := func(s string) rune { return []rune(s)[0] }
	for dx := 1; dx < w-1; dx++ {
		g.set(x+dx, y, runeOf(border.Top), col)
		g.set(x+dx, y+h-1, runeOf(border.Bottom), col)
	}
	for dy := 1; dy < h-1; dy++ {
		g.set(x, y+dy, runeOf(border.Left), col)
		g.set(x+w-1, y+dy, runeOf(border.Right), col)
	}
	g.set(x, y, runeOf(border.TopLeft), col)
	g.set(x+w-1, y, runeOf(border.TopRight), col)
	g.set(x, y+h-1, runeOf(border.BottomLeft), col)
	g.set(x+w-1, y+h-1, runeOf(border.BottomRight), col)

	if h > 2 {
		label := []rune(shortID(id))
		if len(label) > w-4 {
			label = label[:max(w-4, 0)]
		}
		for i, r := range label {
			g.set(x+2+i, y+1, r, col)
		}
	}
}

// String renders the grid, styling runs of cells that share a colour.
func (g *grid) String() string {
	var b strings.Builder
	for y := range g.rows {
		start := 0
		for x := 1; x <= g.cols; x++ {
			if x < g.cols && g.colour[y][x] == g.colour[y][start] {
				continue
			}
			run := string(g.cells[y][start:x])
			if c := g.colour[y][start]; c >= 0 {
				run = lipgloss.NewStyle().Foreground(columnColor(c)).Render(run)
			}
			b.WriteString(run)
			start = x
		}
		b.WriteString("\n")
	}
	return b.String()
}

// shortID abbreviates generated uuids.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// lockedSource serializes access to a feed shared by concurrent commands.
type lockedSource struct {
	mu  sync.Mutex
	src feed.Source
}

func (s *lockedSource) Next(ctx context.Context, n int) ([]*masonry.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Next(ctx, n)
}
