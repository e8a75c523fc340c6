package chat

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/papercomputeco/console/pkg/config"
)

// Run starts the chat program and blocks until it exits. When configPath is
// non-empty the file is watched and edits are applied to the running chat.
func Run(p Params, configPath string) error {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	program := tea.NewProgram(NewModel(p), tea.WithAltScreen())

	var watcher *config.Watcher
	if configPath != "" {
		var err error
		watcher, err = config.Watch(configPath, func(cfg config.Config) {
			program.Send(ConfigReloadedMsg{Config: cfg})
		})
		if err != nil {
			// Hot reload is a convenience; run without it.
			p.Logger.Warn("config watch unavailable", zap.Error(err))
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	_, err := program.Run()
	return err
}
