package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/templui/vows/internal/listview"
	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/moderation"
)

type wishesLoadedMsg struct {
	wishes []model.Wish
	err    error
}

type wishModeratedMsg struct {
	id     string
	action moderation.Action
	wish   *model.Wish
	err    error
}

type wishDeletedMsg struct {
	id  string
	err error
}

type wishesModel struct {
	ctx    context.Context
	svc    WishModerator
	keys   keyMap
	styles styles

	list      *listview.WishList
	search    textinput.Model
	searching bool
	cursor    int
	deleting  string
	loading   bool
	status    string
	failed    bool
}

func newWishesModel(ctx context.Context, svc WishModerator, keys keyMap, st styles) *wishesModel {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search by name"
	search.CharLimit = 100

	return &wishesModel{
		ctx:    ctx,
		svc:    svc,
		keys:   keys,
		styles: st,
		list:   listview.NewWishList(listview.PageSize),
		search: search,
	}
}

func (w *wishesModel) capturing() bool {
	return w.searching || w.deleting != ""
}

func (w *wishesModel) reload() tea.Cmd {
	w.loading = true
	ctx, svc := w.ctx, w.svc
	return func() tea.Msg {
		wishes, err := svc.All(ctx)
		return wishesLoadedMsg{wishes: wishes, err: err}
	}
}

func (w *wishesModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case wishesLoadedMsg:
		w.loading = false
		if msg.err != nil {
			w.setStatus(true, "failed to load wishes: %v", msg.err)
			return nil
		}
		w.list.SetCollection(msg.wishes)
		w.clamp()
		return nil

	case wishModeratedMsg:
		if msg.err != nil {
			w.list.Rollback(msg.id)
			w.setStatus(true, "could not %s: %v", msg.action, msg.err)
		} else {
			w.list.Confirm(*msg.wish)
			w.setStatus(false, "%s: %s", msg.wish.Name, msg.action)
		}
		w.clamp()
		return nil

	case wishDeletedMsg:
		if msg.err != nil {
			w.setStatus(true, "could not delete: %v", msg.err)
			return nil
		}
		w.list.Remove(msg.id)
		w.clamp()
		w.setStatus(false, "wish deleted")
		return nil

	case tea.KeyMsg:
		return w.handleKey(msg)
	}
	return nil
}

func (w *wishesModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if w.searching {
		switch msg.String() {
		case "enter":
			w.searching = false
			w.search.Blur()
			return nil
		case "esc":
			w.searching = false
			w.search.Blur()
			w.search.SetValue("")
			w.list.SetText("")
			w.clamp()
			return nil
		}
		var cmd tea.Cmd
		w.search, cmd = w.search.Update(msg)
		w.list.SetText(w.search.Value())
		w.clamp()
		return cmd
	}

	if w.deleting != "" {
		id := w.deleting
		switch {
		case key.Matches(msg, w.keys.Confirm):
			w.deleting = ""
			ctx, svc := w.ctx, w.svc
			return func() tea.Msg {
				return wishDeletedMsg{id: id, err: svc.Delete(ctx, id)}
			}
		case key.Matches(msg, w.keys.Cancel):
			w.deleting = ""
		}
		return nil
	}

	switch {
	case key.Matches(msg, w.keys.Up):
		w.cursor = max(w.cursor-1, 0)
	case key.Matches(msg, w.keys.Down):
		w.cursor = min(w.cursor+1, max(w.list.VisibleCount()-1, 0))
	case key.Matches(msg, w.keys.Search):
		w.searching = true
		return w.search.Focus()
	case key.Matches(msg, w.keys.Filter):
		w.list.SetCategory(w.list.Criteria().Category.Next())
		w.clamp()
	case key.Matches(msg, w.keys.More):
		w.list.LoadMore()
	case key.Matches(msg, w.keys.Reload):
		return w.reload()
	case key.Matches(msg, w.keys.Approve):
		return w.moderate(moderation.Approve)
	case key.Matches(msg, w.keys.Revoke):
		return w.moderate(moderation.Revoke)
	case key.Matches(msg, w.keys.Feature):
		sel, ok := w.selected()
		if ok {
			return w.moderate(moderation.Toggle(moderation.StateOf(sel.IsApproved, sel.IsFeatured)))
		}
	case key.Matches(msg, w.keys.Delete):
		sel, ok := w.selected()
		if ok {
			w.deleting = sel.ID
		}
	}
	return nil
}

// moderate shows the change at once and asks the store to persist it. The
// store's answer confirms or rolls back the entry.
func (w *wishesModel) moderate(action moderation.Action) tea.Cmd {
	sel, ok := w.selected()
	if !ok {
		return nil
	}
	if e, _ := w.list.Entry(sel.ID); e.Pending() {
		w.setStatus(true, "still saving %s", sel.Name)
		return nil
	}

	from := moderation.StateOf(sel.IsApproved, sel.IsFeatured)
	to, err := moderation.Next(from, action)
	if err != nil {
		w.setStatus(true, "%v", err)
		return nil
	}
	if to == from {
		return nil
	}

	approved, featured := to.Flags()
	w.list.Patch(sel.ID, func(wish model.Wish) model.Wish {
		wish.IsApproved, wish.IsFeatured = approved, featured
		return wish
	})
	w.clamp()

	ctx, svc, id := w.ctx, w.svc, sel.ID
	return func() tea.Msg {
		wish, err := svc.Moderate(ctx, id, action)
		return wishModeratedMsg{id: id, action: action, wish: wish, err: err}
	}
}

func (w *wishesModel) selected() (model.Wish, bool) {
	visible := w.list.Visible()
	if w.cursor < 0 || w.cursor >= len(visible) {
		return model.Wish{}, false
	}
	return visible[w.cursor], true
}

func (w *wishesModel) clamp() {
	w.cursor = min(w.cursor, max(w.list.VisibleCount()-1, 0))
}

func (w *wishesModel) setStatus(failed bool, format string, args ...any) {
	w.failed = failed
	w.status = fmt.Sprintf(format, args...)
}

func (w *wishesModel) view() string {
	var b strings.Builder

	b.WriteString(w.search.View())
	b.WriteString(w.styles.Muted.Render(fmt.Sprintf("   category: %s", w.list.Criteria().Category)))
	b.WriteString("\n\n")

	visible := w.list.Visible()
	if len(visible) == 0 {
		if w.loading {
			b.WriteString(w.styles.Muted.Render("loading wishes…"))
		} else {
			b.WriteString(w.styles.Muted.Render("no wishes match"))
		}
		b.WriteString("\n")
	}

	for i, wish := range visible {
		cursor := "  "
		name := wish.Name
		if i == w.cursor {
			cursor = w.styles.Selected.Render("> ")
			name = w.styles.Selected.Render(name)
		}

		line := fmt.Sprintf("%s%s %s  %s", cursor, w.badge(wish), name, w.styles.Muted.Render(truncate(wish.Message, 60)))
		if wish.HasVideo() {
			line += " ▶"
		}
		if e, _ := w.list.Entry(wish.ID); e.Pending() {
			line += w.styles.Muted.Render("  saving…")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("showing %d of %d", w.list.VisibleCount(), len(w.list.Matches()))
	if w.list.HasMore() {
		footer += " · m for more"
	}
	b.WriteString(w.styles.Muted.Render(footer))
	b.WriteString("\n")

	switch {
	case w.deleting != "":
		b.WriteString(w.styles.Error.Render("Delete this wish permanently? y/n"))
	case w.status != "" && w.failed:
		b.WriteString(w.styles.Error.Render(w.status))
	case w.status != "":
		b.WriteString(w.styles.Muted.Render(w.status))
	}
	return b.String()
}

func (w *wishesModel) badge(wish model.Wish) string {
	switch moderation.StateOf(wish.IsApproved, wish.IsFeatured) {
	case moderation.Featured:
		return w.styles.Featured.Render("★ featured")
	case moderation.Approved:
		return w.styles.Approved.Render("✓ approved")
	default:
		return w.styles.Pending.Render("· pending ")
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
