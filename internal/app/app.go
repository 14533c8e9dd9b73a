// Package app wires configuration, the hotkey listener, the forwarder and
// the optional tray into one application.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/TanaroSch/clipforward/internal/clipboard"
	"github.com/TanaroSch/clipforward/internal/config"
	"github.com/TanaroSch/clipforward/internal/forwarder"
	"github.com/TanaroSch/clipforward/internal/hotkey"
	"github.com/TanaroSch/clipforward/internal/keys"
	"github.com/TanaroSch/clipforward/internal/resources"
	"github.com/TanaroSch/clipforward/internal/ui"
	"github.com/TanaroSch/clipforward/internal/window"
)

// Application represents the main application
type Application struct {
	config         *config.Config
	version        string
	log            logrus.FieldLogger
	forwarder      *forwarder.Forwarder
	listener       *hotkey.Listener
	systrayManager *ui.SystrayManager
}

// ErrPasteCapturedByTrigger is returned when the paste combination equals the
// trigger on a backend that cannot release the trigger around the paste.
var ErrPasteCapturedByTrigger = errors.New("paste_keys would be captured by the trigger hotkey")

// Components are the OS-facing parts of the application. Backend is
// required; other zero fields are filled with the system implementations.
type Components struct {
	Clipboard clipboard.Reader
	Finders   []window.Finder
	Sender    keys.Sender
	Backend   hotkey.Backend
}

// New creates a new application instance from cfg listening on backend.
func New(cfg *config.Config, version string, log logrus.FieldLogger, backend hotkey.Backend) (*Application, error) {
	return NewWithComponents(cfg, version, log, Components{Backend: backend})
}

// NewWithComponents is New with injectable OS integrations.
func NewWithComponents(cfg *config.Config, version string, log logrus.FieldLogger, c Components) (*Application, error) {
	if c.Backend == nil {
		return nil, errors.New("no hotkey backend")
	}
	pattern, err := cfg.TitlePattern()
	if err != nil {
		return nil, err
	}
	paste, err := keys.Parse(cfg.PasteKeys)
	if err != nil {
		return nil, fmt.Errorf("invalid paste_keys: %w", err)
	}
	submit, err := keys.Parse(cfg.SubmitKeys)
	if err != nil {
		return nil, fmt.Errorf("invalid submit_keys: %w", err)
	}
	suspend := sameCombo(cfg.Hotkey, paste)
	if suspend && !hotkey.CanSuspend(c.Backend) {
		return nil, fmt.Errorf("%w (%s on %s); set paste_keys = \"shift+insert\"", ErrPasteCapturedByTrigger, paste, c.Backend.Name())
	}

	if c.Finders == nil {
		if c.Finders, err = window.NewFinders(cfg.Backends); err != nil {
			return nil, err
		}
	}
	if c.Clipboard == nil {
		c.Clipboard = clipboard.NewSystemReader()
	}
	if c.Sender == nil {
		c.Sender = keys.NewChainSender(log, keys.NewRobotSender(), keys.NewNativeSender())
	}

	chain := window.NewChain(log, c.Finders...)
	fwd := forwarder.New(c.Clipboard, chain, c.Sender, forwarder.Options{
		Pattern:         pattern,
		Paste:           paste,
		Submit:          submit,
		FocusDelay:      cfg.FocusDelay.Duration,
		SubmitDelay:     cfg.SubmitDelay.Duration,
		TitleSampleSize: cfg.TitleSampleSize,
	}, log)

	listener := hotkey.NewListener(c.Backend, cfg.Hotkey, fwd.Trigger, log)
	if suspend {
		fwd.SetSuspender(listener)
	}

	log.WithFields(logrus.Fields{
		"pattern":         pattern.String(),
		"window_backends": chain.Names(),
		"paste_keys":      paste.String(),
		"submit_keys":     submit.String(),
	}).Debug("Forwarder configured")

	return &Application{
		config:    cfg,
		version:   version,
		log:       log,
		forwarder: fwd,
		listener:  listener,
	}, nil
}

// sameCombo reports whether the trigger combination would capture the
// synthesized paste.
func sameCombo(hotkeyStr string, paste keys.Combo) bool {
	trigger, err := keys.Parse(hotkeyStr)
	if err != nil {
		return false
	}
	if trigger.Key != paste.Key || len(trigger.Modifiers) != len(paste.Modifiers) {
		return false
	}
	seen := make(map[string]bool, len(trigger.Modifiers))
	for _, m := range trigger.Modifiers {
		seen[m] = true
	}
	for _, m := range paste.Modifiers {
		if !seen[m] {
			return false
		}
	}
	return true
}

// Forwarder exposes the trigger handler, mainly for tests.
func (a *Application) Forwarder() *forwarder.Forwarder {
	return a.forwarder
}

// Run registers the hotkey and blocks until ctx is cancelled or the tray
// Quit item is used.
func (a *Application) Run(ctx context.Context) error {
	if err := a.listener.Register(); err != nil {
		return err
	}
	a.log.Infof("Listening for %s to forward to the target window...", a.config.Hotkey)

	if !a.trayEnabled() {
		a.listener.Run(ctx)
		a.log.Info("Shutting down")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.listener.Run(ctx)
	}()

	a.systrayManager = a.newSystrayManager(cancel)
	go func() {
		<-ctx.Done()
		a.systrayManager.Quit()
	}()
	a.systrayManager.Run()

	cancel()
	<-done
	a.log.Info("Shutting down")
	return nil
}

func (a *Application) trayEnabled() bool {
	if !a.config.Tray.Enabled {
		return false
	}
	if runtime.GOOS == "darwin" {
		// The hotkey event loop owns the main thread there.
		a.log.Warn("Tray is not supported on macOS; running without it")
		return false
	}
	return true
}

func (a *Application) newSystrayManager(quit context.CancelFunc) *ui.SystrayManager {
	icon, err := resources.GetIcon()
	if err != nil {
		a.log.WithError(err).Warn("Failed to load embedded icon")
	}
	return ui.NewSystrayManager(
		a.version,
		a.config.GetConfigPath(),
		icon,
		a.log,
		a.forwarder.SetPaused,
		a.onOpenConfigFile,
		quit,
	)
}

// onOpenConfigFile is called when the open config menu item is clicked
func (a *Application) onOpenConfigFile() {
	configPath := a.config.GetConfigPath()
	if configPath == "" {
		a.log.Warn("No configuration file in use; nothing to open")
		return
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		a.log.WithError(err).Warnf("Failed to get absolute path for '%s'; using it as is", configPath)
		absPath = configPath
	}
	if err := ui.OpenFileInDefaultApp(absPath); err != nil {
		a.log.WithError(err).Warnf("Could not open config file '%s'", absPath)
	}
}
