package review

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/flip/pkg/auth"
	"tableflip.dev/flip/pkg/session"
	"tableflip.dev/flip/pkg/store"
)

// Review owns the TUI program wiring.
type Review struct {
	Provider auth.Provider
	Remote   store.Remote
}

// Do runs the review UI until the user quits.
func (n *Review) Do(ctx context.Context) error {
	ctrl := session.New(n.Provider, n.Remote)
	defer ctrl.Close()

	p := tea.NewProgram(New(ctrl), tea.WithAltScreen())

	// Controller changes triggered outside a keypress (the initial
	// load, auth notifications) also need to reach the UI loop.
	ctrl.OnChange(func() {
		go p.Send(refreshMsg{})
	})

	_, err := p.Run()
	return err
}
