package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/service"
)

// Run starts the interactive shell and blocks until the user quits.
func Run(svc *service.Service, log *zap.SugaredLogger) error {
	m, err := NewModel(svc, log)
	if err != nil {
		return err
	}

	p := tea.NewProgram(*m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	return err
}
