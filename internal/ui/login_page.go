package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/circleshare/circleshare/internal/models"
)

type loginMode int

const (
	modeLogin loginMode = iota
	modeRegister
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldCount
)

// loginPage gates the rest of the application. Field values are validated
// locally before any intent is emitted; server failures come back through
// SetError.
type loginPage struct {
	mode   loginMode
	inputs [fieldCount]textinput.Model
	focus  int
	errMsg string
	busy   bool

	styles Styles
}

func newLoginPage(styles Styles) loginPage {
	name := textinput.New()
	name.Placeholder = "Display name"
	name.CharLimit = 60

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	p := loginPage{
		mode:   modeLogin,
		inputs: [fieldCount]textinput.Model{name, email, password},
		styles: styles,
	}
	p.setFocus(fieldEmail)
	return p
}

func (p *loginPage) setFocus(i int) {
	p.focus = i
	for f := range p.inputs {
		if f == i {
			p.inputs[f].Focus()
		} else {
			p.inputs[f].Blur()
		}
	}
}

func (p *loginPage) firstField() int {
	if p.mode == modeRegister {
		return fieldName
	}
	return fieldEmail
}

func (p *loginPage) nextField(delta int) {
	first := p.firstField()
	span := fieldCount - first
	p.setFocus(first + ((p.focus-first+delta)+span)%span)
}

// SetError records a failure from a finished login or register attempt and
// re-enables the form.
func (p *loginPage) SetError(err error) {
	p.busy = false
	if err != nil {
		p.errMsg = err.Error()
	}
}

func (p loginPage) Update(msg tea.Msg) (loginPage, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	if p.busy {
		return p, nil
	}

	switch key.String() {
	case "tab", "down":
		p.nextField(1)
		return p, nil
	case "shift+tab", "up":
		p.nextField(-1)
		return p, nil
	case "ctrl+r":
		if p.mode == modeLogin {
			p.mode = modeRegister
			p.setFocus(fieldName)
		} else {
			p.mode = modeLogin
			p.setFocus(fieldEmail)
		}
		p.errMsg = ""
		return p, nil
	case "enter":
		return p.submit()
	}

	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return p, cmd
}

func (p loginPage) submit() (loginPage, tea.Cmd) {
	name := strings.TrimSpace(p.inputs[fieldName].Value())
	email := strings.TrimSpace(p.inputs[fieldEmail].Value())
	password := p.inputs[fieldPassword].Value()

	if p.mode == modeRegister {
		if err := models.ValidateName(name); err != nil {
			p.errMsg = err.Error()
			return p, nil
		}
	}
	if err := models.ValidateEmail(email); err != nil {
		p.errMsg = err.Error()
		return p, nil
	}
	if p.mode == modeRegister {
		if err := models.ValidatePassword(password); err != nil {
			p.errMsg = err.Error()
			return p, nil
		}
	} else if password == "" {
		p.errMsg = "password is required"
		return p, nil
	}

	p.errMsg = ""
	p.busy = true
	if p.mode == modeRegister {
		return p, func() tea.Msg {
			return registerIntent{name: name, email: email, password: password}
		}
	}
	return p, func() tea.Msg {
		return loginIntent{email: email, password: password}
	}
}

func (p loginPage) View() string {
	var sb strings.Builder

	title := " CircleShare · Sign in "
	hint := "[ctrl+r] create an account"
	if p.mode == modeRegister {
		title = " CircleShare · Create account "
		hint = "[ctrl+r] back to sign in"
	}
	sb.WriteString(p.styles.Header.Render(title) + "\n\n")

	if p.mode == modeRegister {
		sb.WriteString(p.inputs[fieldName].View() + "\n")
	}
	sb.WriteString(p.inputs[fieldEmail].View() + "\n")
	sb.WriteString(p.inputs[fieldPassword].View() + "\n\n")

	if p.busy {
		sb.WriteString(p.styles.Muted.Render("working...") + "\n")
	}
	if p.errMsg != "" {
		sb.WriteString(p.styles.Error.Render(p.errMsg) + "\n")
	}

	sb.WriteString("\n" + p.styles.Help.Render("[enter] submit  [tab] next field  "+hint))
	return sb.String()
}
