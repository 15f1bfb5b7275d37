package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit       key.Binding
	Sections   []key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Submit     key.Binding
	AuthTab    key.Binding
	Logout     key.Binding
	UpDown     key.Binding
	Select     key.Binding
	Disaster   key.Binding
	Vastu      key.Binding
	Generate   key.Binding
	ViewReport []key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Sections: []key.Binding{
			key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "auth")),
			key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "survey")),
			key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "building")),
			key.NewBinding(key.WithKeys("f4"), key.WithHelp("f4", "wind")),
			key.NewBinding(key.WithKeys("f5"), key.WithHelp("f5", "analysis")),
			key.NewBinding(key.WithKeys("f6"), key.WithHelp("f6", "reports")),
		},
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		AuthTab:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "login/register")),
		Logout:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "logout")),
		UpDown:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "choose")),
		Select:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "select survey")),
		Disaster:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "disaster")),
		Vastu:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "vastu")),
		Generate:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "final report")),
		ViewReport: []key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "disaster report")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "vastu report")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "final report")),
		},
	}
}

// helpLine renders bindings as "key desc" pairs.
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
