package intake

import (
	"github.com/atinylittleshell/clinicdesk/pkg/suggestinput"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Save      key.Binding
	Quit      key.Binding

	// Shown in the help line only; the inputs handle these themselves.
	Suggest key.Binding
	Accept  key.Binding
}

var defaultKeyMap = keyMap{
	NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
	Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Suggest:   suggestinput.DefaultKeyMap.Next,
	Accept:    suggestinput.DefaultKeyMap.Accept,
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Suggest, k.Accept, k.NextField, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.PrevField}}
}
