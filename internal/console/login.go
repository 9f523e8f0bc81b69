package console

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/service"
)

type loginResultMsg struct {
	user *model.User
	err  error
}

type loginModel struct {
	ctx      context.Context
	auth     Authenticator
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	err      string
}

func newLoginModel(ctx context.Context, auth Authenticator) *loginModel {
	email := textinput.New()
	email.Placeholder = "couple@example.com"
	email.Prompt = "Email    "
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 72

	return &loginModel{ctx: ctx, auth: auth, email: email, password: password}
}

func (l *loginModel) init() tea.Cmd {
	return tea.Batch(textinput.Blink, l.email.Focus())
}

func (l *loginModel) update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && !l.busy {
		switch k.String() {
		case "tab", "shift+tab", "up", "down":
			return l.toggleFocus()
		case "enter":
			if l.focus == 0 {
				return l.toggleFocus()
			}
			return l.submit()
		case "esc":
			return tea.Quit
		}
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.email, cmd = l.email.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}

func (l *loginModel) toggleFocus() tea.Cmd {
	if l.focus == 0 {
		l.focus = 1
		l.email.Blur()
		return l.password.Focus()
	}
	l.focus = 0
	l.password.Blur()
	return l.email.Focus()
}

func (l *loginModel) submit() tea.Cmd {
	email := strings.TrimSpace(l.email.Value())
	password := l.password.Value()
	if email == "" || password == "" {
		l.err = "email and password are required"
		return nil
	}

	l.busy = true
	l.err = ""
	ctx, auth := l.ctx, l.auth
	return func() tea.Msg {
		user, err := auth.Login(ctx, email, password)
		return loginResultMsg{user: user, err: err}
	}
}

func (l *loginModel) fail(err error) {
	l.busy = false
	l.password.SetValue("")
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		l.err = "invalid email or password"
	case errors.Is(err, service.ErrNotAdmin):
		l.err = "this account is not an administrator"
	default:
		l.err = "sign-in failed: " + err.Error()
	}
}

func (l *loginModel) view(st styles) string {
	lines := []string{
		st.Title.Render("Sign in to moderate"),
		l.email.View(),
		l.password.View(),
		"",
	}
	switch {
	case l.busy:
		lines = append(lines, st.Muted.Render("signing in…"))
	case l.err != "":
		lines = append(lines, st.Error.Render(l.err))
	default:
		lines = append(lines, st.Muted.Render("tab to switch fields · enter to sign in · esc to quit"))
	}
	return st.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
