// Package console is the terminal moderation dashboard. It talks to the
// services directly, so it runs next to the database rather than over HTTP.
package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/moderation"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/storage"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.User, error)
}

type WishModerator interface {
	All(ctx context.Context) ([]model.Wish, error)
	Moderate(ctx context.Context, id string, action moderation.Action) (*model.Wish, error)
	Delete(ctx context.Context, id string) error
}

type GalleryManager interface {
	Page(ctx context.Context, offset, limit int) ([]model.GalleryImage, error)
	SetFeatured(ctx context.Context, id string, action moderation.Action) (*model.GalleryImage, error)
	Delete(ctx context.Context, id string) error
	Upload(ctx context.Context, files []storage.File, opts service.UploadOptions) (*service.Uploaded, error)
}

type StatsSource interface {
	Stats(ctx context.Context) (*service.Stats, error)
}

type Deps struct {
	Auth    Authenticator
	Wishes  WishModerator
	Gallery GalleryManager
	Stats   StatsSource
}

type screen int

const (
	screenLogin screen = iota
	screenMain
)

type tab int

const (
	tabWishes tab = iota
	tabGallery
)

type statsMsg struct {
	stats *service.Stats
	err   error
}

type Model struct {
	ctx    context.Context
	deps   Deps
	keys   keyMap
	styles styles
	help   help.Model

	screen  screen
	tab     tab
	user    *model.User
	stats   *service.Stats
	login   *loginModel
	wishes  *wishesModel
	gallery *galleryModel

	width  int
	height int
}

func New(ctx context.Context, deps Deps) Model {
	keys := newKeyMap()
	st := newStyles()
	return Model{
		ctx:     ctx,
		deps:    deps,
		keys:    keys,
		styles:  st,
		help:    help.New(),
		screen:  screenLogin,
		login:   newLoginModel(ctx, deps.Auth),
		wishes:  newWishesModel(ctx, deps.Wishes, keys, st),
		gallery: newGalleryModel(ctx, deps.Gallery, keys, st),
	}
}

// Run blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return m.login.init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, 0), max(msg.Height, 0)
		m.help.Width = m.width
		m.gallery.setWidth(m.width)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case loginResultMsg:
		if msg.err != nil {
			m.login.fail(msg.err)
			return m, nil
		}
		m.user = msg.user
		m.screen = screenMain
		return m, tea.Batch(m.loadStats(), m.wishes.reload(), m.gallery.reload())

	case statsMsg:
		if msg.err == nil {
			m.stats = msg.stats
		}
		return m, nil
	}

	if m.screen == screenLogin {
		cmd := m.login.update(msg)
		return m, cmd
	}

	if k, ok := msg.(tea.KeyMsg); ok && !m.capturingInput() {
		switch {
		case key.Matches(k, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(k, m.keys.Tab):
			m.tab = (m.tab + 1) % 2
			return m, nil
		case key.Matches(k, m.keys.ShowHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	// Results are routed to their tab whichever tab is showing
	var cmds []tea.Cmd
	switch msg.(type) {
	case tea.KeyMsg:
		if m.tab == tabWishes {
			cmds = append(cmds, m.wishes.update(msg))
		} else {
			cmds = append(cmds, m.gallery.update(msg))
		}
	default:
		cmds = append(cmds, m.wishes.update(msg), m.gallery.update(msg))
	}

	if changesStats(msg) {
		cmds = append(cmds, m.loadStats())
	}
	return m, tea.Batch(cmds...)
}

// capturingInput is true while a text field or confirmation owns the keyboard.
func (m Model) capturingInput() bool {
	if m.tab == tabWishes {
		return m.wishes.capturing()
	}
	return m.gallery.capturing()
}

func changesStats(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case wishModeratedMsg:
		return msg.err == nil
	case wishDeletedMsg:
		return msg.err == nil
	case imageDeletedMsg:
		return msg.err == nil
	case uploadDoneMsg:
		return true
	}
	return false
}

func (m Model) loadStats() tea.Cmd {
	if m.deps.Stats == nil {
		return nil
	}
	ctx, src := m.ctx, m.deps.Stats
	return func() tea.Msg {
		stats, err := src.Stats(ctx)
		return statsMsg{stats: stats, err: err}
	}
}

func (m Model) View() string {
	if m.screen == screenLogin {
		return m.login.view(m.styles)
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.tab == tabWishes {
		b.WriteString(m.wishes.view())
	} else {
		b.WriteString(m.gallery.view())
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Status.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) header() string {
	title := m.styles.Header.Render("Vows admin")

	wishes, gallery := m.styles.Tab, m.styles.Tab
	if m.tab == tabWishes {
		wishes = m.styles.ActiveTab
	} else {
		gallery = m.styles.ActiveTab
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		wishes.Render("Wishes"),
		gallery.Render("Gallery"),
	)

	info := ""
	if m.stats != nil {
		info = m.styles.Muted.Render(fmt.Sprintf("%d wishes · %d pending · %d featured · %d photos",
			m.stats.TotalWishes, m.stats.PendingWishes, m.stats.FeaturedWishes, m.stats.GalleryImages))
	}
	if m.user != nil {
		info = lipgloss.JoinHorizontal(lipgloss.Top, info, m.styles.Muted.Render("  "+m.user.Email))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, tabs, info)
}
