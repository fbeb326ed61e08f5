package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the shared bindings. Form fields and modals consume raw keys
// so their text entry never collides with these.
type keyMap struct {
	Quit      key.Binding
	Dashboard key.Binding
	History   key.Binding
	Settings  key.Binding
	Add       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	New       key.Binding
	Budget    key.Binding
	Export    key.Binding
	Import    key.Binding
	Reset     key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Up        key.Binding
	Down      key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
	History:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "history")),
	Settings:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "settings")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("enter", "edit")),
	Delete:    key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("del", "delete")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new category")),
	Budget:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "budget")),
	Export:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "export")),
	Import:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
	Reset:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset db")),
	PrevMonth: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev month")),
	NextMonth: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "down")),
}

func footerHelp(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, "["+h.Key+"] "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
