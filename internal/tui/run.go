package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/epe-tools/epeconsole/internal/api"
	"github.com/epe-tools/epeconsole/internal/config"
	"github.com/epe-tools/epeconsole/internal/session"
)

// Run starts the console and blocks until the operator quits. Config file
// changes are pushed into the running program so a base-url or logging
// tweak does not need a restart.
func Run(cfgPath string, cfg *config.Config, client *api.Client, store *session.Store) error {
	p := tea.NewProgram(New(cfg, client, store), tea.WithAltScreen())

	stop, err := config.Watch(cfgPath, func(next *config.Config) {
		p.Send(configUpdatedMsg{cfg: next})
	})
	if err != nil {
		log.WithError(err).Debug("config watcher unavailable")
	} else {
		defer stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}
