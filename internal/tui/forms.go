package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ValidationError marks form input rejected before any gateway call was
// made. The gateway never sees a payload that failed local validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ParseJSONField validates a JSON-typed form field. Empty input is allowed
// and yields nil; anything else must parse as JSON or the whole submission
// is rejected locally.
func ParseJSONField(name, input string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, &ValidationError{Field: name, Reason: "invalid JSON"}
	}
	return json.RawMessage(trimmed), nil
}

// RequireField rejects an empty required field.
func RequireField(name, input string) error {
	if strings.TrimSpace(input) == "" {
		return &ValidationError{Field: name, Reason: "required"}
	}
	return nil
}

// splitCSV turns a comma-separated input field into a trimmed list,
// dropping empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Form is an ordered group of labeled text inputs with a single focus.
// Submodels embed one per mutation workflow.
type Form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

// NewForm builds a form with one input per label, the first focused.
func NewForm(labels ...string) *Form {
	f := &Form{labels: labels}
	for i := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 0
		in.Width = 48
		if i == 0 {
			in.Focus()
		}
		f.inputs = append(f.inputs, in)
	}
	return f
}

// Len returns the number of fields.
func (f *Form) Len() int { return len(f.inputs) }

// Value returns the current text of field i.
func (f *Form) Value(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

// SetValue replaces the text of field i.
func (f *Form) SetValue(i int, v string) { f.inputs[i].SetValue(v) }

// SetPassword masks field i as a secret input.
func (f *Form) SetPassword(i int) { f.inputs[i].EchoMode = textinput.EchoPassword }

// Reset clears every field and refocuses the first.
func (f *Form) Reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.SetFocus(0)
}

// SetFocus moves focus to field i.
func (f *Form) SetFocus(i int) {
	if i < 0 || i >= len(f.inputs) {
		return
	}
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	f.focus = i
}

// Next moves focus to the following field, wrapping around.
func (f *Form) Next() { f.SetFocus((f.focus + 1) % len(f.inputs)) }

// Prev moves focus to the preceding field, wrapping around.
func (f *Form) Prev() { f.SetFocus((f.focus - 1 + len(f.inputs)) % len(f.inputs)) }

// Update forwards a message to the focused input. Tab and shift+tab move
// focus; everything else is typed into the field.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.Next()
			return nil
		case "shift+tab", "up":
			f.Prev()
			return nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// View renders the labeled fields, highlighting the focused label.
func (f *Form) View() string {
	var b strings.Builder
	for i, label := range f.labels {
		style := InputLabelStyle
		if i == f.focus {
			style = FocusedLabelStyle
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
