// Package ui provides the optional system tray menu.
package ui

import (
	"fmt"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"
)

// SystrayManager handles the system tray icon and menu.
type SystrayManager struct {
	version      string
	configPath   string
	embeddedIcon []byte
	log          logrus.FieldLogger

	onPause      func(paused bool)
	onOpenConfig func()
	onQuit       func()

	miPause *systray.MenuItem
}

// NewSystrayManager creates a new system tray manager. configPath is shown
// in the "Open Config File" tooltip; an empty path hides the item.
func NewSystrayManager(
	version string,
	configPath string,
	embeddedIcon []byte,
	log logrus.FieldLogger,
	onPause func(paused bool),
	onOpenConfig func(),
	onQuit func(),
) *SystrayManager {
	return &SystrayManager{
		version:      version,
		configPath:   configPath,
		embeddedIcon: embeddedIcon,
		log:          log,
		onPause:      onPause,
		onOpenConfig: onOpenConfig,
		onQuit:       onQuit,
	}
}

// Run initializes and starts the system tray. It blocks until Quit.
func (s *SystrayManager) Run() {
	systray.Run(s.onReady, s.onExit)
}

// Quit removes the tray icon and makes Run return.
func (s *SystrayManager) Quit() {
	systray.Quit()
}

// onReady is called by systray once the tray is ready.
func (s *SystrayManager) onReady() {
	title := fmt.Sprintf("clipforward %s", s.version)
	systray.SetTitle(title)
	systray.SetTooltip(title)
	if len(s.embeddedIcon) > 0 {
		systray.SetIcon(s.embeddedIcon)
	} else {
		s.log.Warn("No embedded icon data to set for systray")
	}

	miVersion := systray.AddMenuItem(fmt.Sprintf("Version: %s", s.version), "clipforward version")
	miVersion.Disable()
	systray.AddSeparator()

	s.miPause = systray.AddMenuItemCheckbox("Pause forwarding", "Let the hotkey do nothing until unchecked", false)

	var miOpenConfig *systray.MenuItem
	if s.configPath != "" {
		miOpenConfig = systray.AddMenuItem("Open Config File", "Open "+s.configPath)
	}

	systray.AddSeparator()
	miQuit := systray.AddMenuItem("Quit", "Exit the application")

	go func() {
		for range s.miPause.ClickedCh {
			paused := s.togglePause()
			s.log.WithField("paused", paused).Debug("Pause forwarding menu item clicked")
		}
	}()
	if miOpenConfig != nil {
		go func() {
			for range miOpenConfig.ClickedCh {
				s.log.Debug("Open Config File menu item clicked")
				if s.onOpenConfig != nil {
					s.onOpenConfig()
				}
			}
		}()
	}
	go func() {
		<-miQuit.ClickedCh
		s.log.Info("Quit menu item clicked")
		if s.onQuit != nil {
			s.onQuit()
		}
		systray.Quit()
	}()

	s.log.Debug("Systray ready and menu configured")
}

// togglePause flips the checkbox and reports the new state.
func (s *SystrayManager) togglePause() bool {
	paused := !s.miPause.Checked()
	if paused {
		s.miPause.Check()
	} else {
		s.miPause.Uncheck()
	}
	if s.onPause != nil {
		s.onPause(paused)
	}
	return paused
}

// onExit is called when the systray is exiting.
func (s *SystrayManager) onExit() {
	s.log.Debug("Systray exiting")
}
