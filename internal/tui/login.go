package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginForm is the credentials prompt shown while unauthenticated.
type loginForm struct {
	username   textinput.Model
	password   textinput.Model
	focusIdx   int // 0 = username, 1 = password
	submitting bool
	errText    string
}

func newLoginForm() loginForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{username: username, password: password}
}

// update routes a key to the form and reports whether the user
// submitted credentials.
func (f *loginForm) update(msg tea.KeyMsg) (submit bool, cmd tea.Cmd) {
	if f.submitting {
		return false, nil
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		f.toggleFocus()
		return false, nil
	case tea.KeyEnter:
		if f.focusIdx == 0 {
			f.toggleFocus()
			return false, nil
		}
		if strings.TrimSpace(f.username.Value()) == "" || f.password.Value() == "" {
			f.errText = "username and password are required"
			return false, nil
		}
		f.errText = ""
		f.submitting = true
		return true, nil
	}

	if f.focusIdx == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return false, cmd
}

func (f *loginForm) toggleFocus() {
	if f.focusIdx == 0 {
		f.focusIdx = 1
		f.username.Blur()
		f.password.Focus()
	} else {
		f.focusIdx = 0
		f.password.Blur()
		f.username.Focus()
	}
}

// fail returns the form to an editable state after a rejected attempt.
func (f *loginForm) fail(errText string) {
	f.submitting = false
	f.errText = errText
	f.password.SetValue("")
}

func (f loginForm) view(s Styles, spinnerView string) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("orderdesk") + "\n\n")
	b.WriteString("  " + f.username.View() + "\n")
	b.WriteString("  " + f.password.View() + "\n\n")
	if f.submitting {
		b.WriteString("  " + spinnerView + " signing in...\n")
	} else if f.errText != "" {
		b.WriteString("  " + s.Error.Render(f.errText) + "\n")
	}
	b.WriteString("\n" + s.Help.Render("  enter submit · tab switch field · ctrl+c quit"))
	return b.String()
}
