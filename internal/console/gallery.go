package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/templui/vows/internal/listview"
	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/moderation"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/upload"
)

type imagesLoadedMsg struct {
	gen  int
	page []model.GalleryImage
	err  error
}

type imageFeaturedMsg struct {
	id  string
	img *model.GalleryImage
	err error
}

type imageDeletedMsg struct {
	id  string
	err error
}

type uploadProgressMsg struct {
	percent int
}

type uploadTaskMsg struct {
	name  string
	state upload.State
}

type uploadDoneMsg struct {
	up  *service.Uploaded
	err error
}

type galleryModel struct {
	ctx    context.Context
	svc    GalleryManager
	keys   keyMap
	styles styles

	feed     *listview.GalleryFeed
	gen      int
	cursor   int
	loading  bool
	deleting string
	status   string
	failed   bool

	paths     textinput.Model
	entering  bool
	uploading bool
	uploadCh  chan tea.Msg
	percent   int
	current   string
	bar       progress.Model
}

func newGalleryModel(ctx context.Context, svc GalleryManager, keys keyMap, st styles) *galleryModel {
	paths := textinput.New()
	paths.Prompt = "files: "
	paths.Placeholder = "photo1.jpg photo2.jpg"

	var fetch listview.Fetcher
	if svc != nil {
		fetch = svc.Page
	}

	return &galleryModel{
		ctx:    ctx,
		svc:    svc,
		keys:   keys,
		styles: st,
		feed:   listview.NewGalleryFeed(fetch, listview.GalleryPageSize),
		paths:  paths,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (g *galleryModel) setWidth(w int) {
	g.bar.Width = max(min(w-20, 60), 10)
}

func (g *galleryModel) capturing() bool {
	return g.entering || g.deleting != ""
}

// reload drops what was fetched and starts again from the newest image.
func (g *galleryModel) reload() tea.Cmd {
	g.feed.Reset()
	g.gen++
	g.loading = false
	g.cursor = 0
	return g.loadMore()
}

func (g *galleryModel) loadMore() tea.Cmd {
	if g.loading || !g.feed.HasMore() {
		return nil
	}
	g.loading = true

	ctx, svc, gen := g.ctx, g.svc, g.gen
	offset, limit := g.feed.NextRange()
	return func() tea.Msg {
		page, err := svc.Page(ctx, offset, limit)
		return imagesLoadedMsg{gen: gen, page: page, err: err}
	}
}

func (g *galleryModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case imagesLoadedMsg:
		if msg.gen != g.gen {
			return nil
		}
		g.loading = false
		if msg.err != nil {
			g.setStatus(true, "failed to load images: %v", msg.err)
			return nil
		}
		g.feed.Append(msg.page)
		return nil

	case imageFeaturedMsg:
		if msg.err != nil {
			g.feed.Rollback(msg.id)
			g.setStatus(true, "could not update image: %v", msg.err)
			return nil
		}
		g.feed.Confirm(*msg.img)
		return nil

	case imageDeletedMsg:
		if msg.err != nil {
			g.setStatus(true, "could not delete: %v", msg.err)
			return nil
		}
		g.feed.Remove(msg.id)
		g.cursor = min(g.cursor, max(g.feed.Len()-1, 0))
		g.setStatus(false, "image deleted")
		return nil

	case uploadProgressMsg:
		g.percent = max(g.percent, msg.percent)
		return waitForUpload(g.uploadCh)

	case uploadTaskMsg:
		if msg.state == upload.StateUploading {
			g.current = msg.name
		}
		return waitForUpload(g.uploadCh)

	case uploadDoneMsg:
		g.uploading = false
		g.uploadCh = nil
		g.current = ""
		switch {
		case msg.err != nil && msg.up != nil && len(msg.up.Images) > 0:
			g.setStatus(true, "uploaded %d, then stopped: %v", len(msg.up.Images), msg.err)
		case msg.err != nil:
			g.setStatus(true, "upload failed: %v", msg.err)
		default:
			g.setStatus(false, "uploaded %d images", len(msg.up.Images))
		}
		return g.reload()

	case tea.KeyMsg:
		return g.handleKey(msg)
	}
	return nil
}

func (g *galleryModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if g.entering {
		switch msg.String() {
		case "enter":
			g.entering = false
			g.paths.Blur()
			return g.startUpload(strings.Fields(g.paths.Value()))
		case "esc":
			g.entering = false
			g.paths.Blur()
			return nil
		}
		var cmd tea.Cmd
		g.paths, cmd = g.paths.Update(msg)
		return cmd
	}

	if g.deleting != "" {
		id := g.deleting
		switch {
		case key.Matches(msg, g.keys.Confirm):
			g.deleting = ""
			ctx, svc := g.ctx, g.svc
			return func() tea.Msg {
				return imageDeletedMsg{id: id, err: svc.Delete(ctx, id)}
			}
		case key.Matches(msg, g.keys.Cancel):
			g.deleting = ""
		}
		return nil
	}

	switch {
	case key.Matches(msg, g.keys.Up):
		g.cursor = max(g.cursor-1, 0)
	case key.Matches(msg, g.keys.Down):
		g.cursor = min(g.cursor+1, max(g.feed.Len()-1, 0))
	case key.Matches(msg, g.keys.More):
		return g.loadMore()
	case key.Matches(msg, g.keys.Reload):
		return g.reload()
	case key.Matches(msg, g.keys.Feature):
		return g.toggleFeatured()
	case key.Matches(msg, g.keys.Delete):
		if sel, ok := g.selected(); ok {
			g.deleting = sel.ID
		}
	case key.Matches(msg, g.keys.Upload):
		if g.uploading {
			g.setStatus(true, "an upload is already running")
			return nil
		}
		g.entering = true
		g.paths.SetValue("")
		return g.paths.Focus()
	}
	return nil
}

func (g *galleryModel) toggleFeatured() tea.Cmd {
	sel, ok := g.selected()
	if !ok {
		return nil
	}
	if e, _ := g.feed.Entry(sel.ID); e.Pending() {
		g.setStatus(true, "still saving this image")
		return nil
	}

	action := moderation.Feature
	if sel.IsFeatured {
		action = moderation.Unfeature
	}
	featured := !sel.IsFeatured
	g.feed.Patch(sel.ID, func(img model.GalleryImage) model.GalleryImage {
		img.IsFeatured = featured
		return img
	})

	ctx, svc, id := g.ctx, g.svc, sel.ID
	return func() tea.Msg {
		img, err := svc.SetFeatured(ctx, id, action)
		return imageFeaturedMsg{id: id, img: img, err: err}
	}
}

// startUpload runs the batch on its own goroutine and feeds progress back
// through a channel, one message per Update.
func (g *galleryModel) startUpload(paths []string) tea.Cmd {
	if len(paths) == 0 {
		return nil
	}

	files := make([]storage.File, 0, len(paths))
	for _, p := range paths {
		f, err := storage.FromPath(p)
		if err != nil {
			g.setStatus(true, "%v", err)
			return nil
		}
		files = append(files, f)
	}

	ch := make(chan tea.Msg, 16)
	g.uploadCh = ch
	g.uploading = true
	g.percent = 0
	g.status = ""

	ctx, svc := g.ctx, g.svc
	go func() {
		// Progress is monotone, so dropping an update under load loses nothing
		send := func(msg tea.Msg) {
			select {
			case ch <- msg:
			default:
			}
		}
		up, err := svc.Upload(ctx, files, service.UploadOptions{
			OnProgress: func(p int) { send(uploadProgressMsg{percent: p}) },
			OnTask:     func(t upload.Task) { send(uploadTaskMsg{name: t.File.Name, state: t.State}) },
		})
		ch <- uploadDoneMsg{up: up, err: err}
		close(ch)
	}()

	return waitForUpload(ch)
}

func waitForUpload(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (g *galleryModel) selected() (model.GalleryImage, bool) {
	items := g.feed.Items()
	if g.cursor < 0 || g.cursor >= len(items) {
		return model.GalleryImage{}, false
	}
	return items[g.cursor], true
}

func (g *galleryModel) setStatus(failed bool, format string, args ...any) {
	g.failed = failed
	g.status = fmt.Sprintf(format, args...)
}

func (g *galleryModel) view() string {
	var b strings.Builder

	items := g.feed.Items()
	if len(items) == 0 {
		if g.loading {
			b.WriteString(g.styles.Muted.Render("loading gallery…"))
		} else {
			b.WriteString(g.styles.Muted.Render("no images yet · u to upload"))
		}
		b.WriteString("\n")
	}

	for i, img := range items {
		cursor := "  "
		if i == g.cursor {
			cursor = g.styles.Selected.Render("> ")
		}
		star := "  "
		if img.IsFeatured {
			star = g.styles.Featured.Render("★ ")
		}
		line := fmt.Sprintf("%s%s%s  %s", cursor, star, img.CreatedAt.Local().Format("Jan 02 15:04"), g.styles.Muted.Render(img.ImageURL))
		if e, _ := g.feed.Entry(img.ID); e.Pending() {
			line += g.styles.Muted.Render("  saving…")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("%d images loaded", g.feed.Len())
	if g.feed.HasMore() {
		footer += " · m for more"
	}
	b.WriteString(g.styles.Muted.Render(footer))
	b.WriteString("\n")

	switch {
	case g.entering:
		b.WriteString(g.paths.View())
	case g.uploading:
		b.WriteString(g.bar.ViewAs(float64(g.percent) / 100))
		if g.current != "" {
			b.WriteString(g.styles.Muted.Render("  " + g.current))
		}
	case g.deleting != "":
		b.WriteString(g.styles.Error.Render("Delete this image permanently? y/n"))
	case g.status != "" && g.failed:
		b.WriteString(g.styles.Error.Render(g.status))
	case g.status != "":
		b.WriteString(g.styles.Muted.Render(g.status))
	}
	return b.String()
}
