package app

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/TanaroSch/clipforward/internal/config"
	"github.com/TanaroSch/clipforward/internal/forwarder"
	"github.com/TanaroSch/clipforward/internal/hotkey"
	"github.com/TanaroSch/clipforward/internal/keys"
	"github.com/TanaroSch/clipforward/internal/window"
)

type stubClipboard struct{ text string }

func (c stubClipboard) ReadText() (string, error) { return c.text, nil }

type stubWindow struct{}

func (stubWindow) Title() string               { return "ChatGPT" }
func (stubWindow) Backend() string             { return "stub" }
func (stubWindow) Focus(context.Context) error { return nil }

type stubFinder struct{}

func (stubFinder) Name() string { return "stub" }
func (stubFinder) Windows(_ context.Context, pattern *regexp.Regexp) ([]window.Window, error) {
	if pattern == nil || pattern.MatchString("ChatGPT") {
		return []window.Window{stubWindow{}}, nil
	}
	return nil, nil
}

type stubSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubSender) Send(_ context.Context, c keys.Combo) error {
	s.mu.Lock()
	s.sent = append(s.sent, c.String())
	s.mu.Unlock()
	return nil
}

type stubRegistration struct{ ch chan struct{} }

func (r *stubRegistration) Keydown() <-chan struct{} { return r.ch }
func (r *stubRegistration) Close() error             { return nil }

// stubBackend counts registrations; the combination is always free.
type stubBackend struct {
	mu          sync.Mutex
	registers   int
	unregisters int

	// block, when set, holds Unregister until closed.
	block chan struct{}
}

func (b *stubBackend) Register(string) (hotkey.RegisteredHotkey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registers++
	return &stubRegistration{ch: make(chan struct{})}, nil
}

func (b *stubBackend) Unregister(string) error {
	b.mu.Lock()
	block := b.block
	b.mu.Unlock()
	if block != nil {
		<-block
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.unregisters++
	return nil
}

func (b *stubBackend) Name() string      { return "stub" }
func (b *stubBackend) IsAvailable() bool { return true }

func (b *stubBackend) counts() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registers, b.unregisters
}

// grabOnlyBackend cannot release a grab promptly, like X11.
type grabOnlyBackend struct{ *stubBackend }

func (grabOnlyBackend) CanSuspend() bool { return false }

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *stubSender, *stubBackend) {
	t.Helper()
	return newTestAppOn(t, cfg, &stubBackend{})
}

func newTestAppOn(t *testing.T, cfg *config.Config, backend *stubBackend) (*Application, *stubSender, *stubBackend) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	sender := &stubSender{}
	a, err := NewWithComponents(cfg, "test", logger, Components{
		Clipboard: stubClipboard{text: "hello"},
		Finders:   []window.Finder{stubFinder{}},
		Sender:    sender,
		Backend:   backend,
	})
	if err != nil {
		t.Fatalf("NewWithComponents: %v", err)
	}
	return a, sender, backend
}

func TestApplication_ForwardsWithDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.FocusDelay = config.Duration{}
	cfg.SubmitDelay = config.Duration{}
	a, sender, _ := newTestApp(t, cfg)

	if err := a.listener.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := a.Forwarder().HandleTrigger(context.Background()); got != forwarder.OutcomeForwarded {
		t.Fatalf("outcome=%s want forwarded", got)
	}
	if len(sender.sent) != 2 || sender.sent[0] != config.DefaultPasteKeys || sender.sent[1] != "enter" {
		t.Fatalf("sent=%v", sender.sent)
	}
}

func TestApplication_SuspendsWhenPasteEqualsTrigger(t *testing.T) {
	cfg := config.Default()
	cfg.PasteKeys = "ctrl+v"
	cfg.FocusDelay = config.Duration{}
	cfg.SubmitDelay = config.Duration{}
	a, sender, backend := newTestApp(t, cfg)

	if err := a.listener.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := a.Forwarder().HandleTrigger(context.Background()); got != forwarder.OutcomeForwarded {
		t.Fatalf("outcome=%s want forwarded", got)
	}

	if len(sender.sent) != 2 || sender.sent[0] != "ctrl+v" || sender.sent[1] != "enter" {
		t.Fatalf("sent=%v", sender.sent)
	}
	// Trigger and paste are both ctrl+v, so the grab is released around the paste.
	if backend.registers != 2 || backend.unregisters != 1 {
		t.Fatalf("registers=%d unregisters=%d, expected suspend and resume", backend.registers, backend.unregisters)
	}
}

func TestApplication_NoSuspendForDistinctTrigger(t *testing.T) {
	cfg := config.Default()
	cfg.Hotkey = "ctrl+shift+v"
	cfg.FocusDelay = config.Duration{}
	cfg.SubmitDelay = config.Duration{}
	a, _, backend := newTestApp(t, cfg)

	if err := a.listener.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	a.Forwarder().HandleTrigger(context.Background())

	if backend.unregisters != 0 {
		t.Fatalf("unregisters=%d, distinct trigger needs no suspend", backend.unregisters)
	}
}

func TestApplication_StuckReleaseDoesNotWedge(t *testing.T) {
	cfg := config.Default()
	cfg.PasteKeys = "ctrl+v"
	cfg.FocusDelay = config.Duration{}
	cfg.SubmitDelay = config.Duration{}
	backend := &stubBackend{block: make(chan struct{})}
	defer close(backend.block)
	a, sender, _ := newTestAppOn(t, cfg, backend)
	a.listener.SetUnregisterTimeout(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()
	waitRegistered(t, backend, 1)

	for i := 0; i < 2; i++ {
		outcome := make(chan forwarder.Outcome, 1)
		go func() { outcome <- a.Forwarder().HandleTrigger(context.Background()) }()
		select {
		case got := <-outcome:
			if got != forwarder.OutcomeKeySendFailed {
				t.Fatalf("trigger %d outcome=%s want key_send_failed", i+1, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("trigger %d still holds the guard", i+1)
		}
	}
	sender.mu.Lock()
	sent := len(sender.sent)
	sender.mu.Unlock()
	if sent != 0 {
		t.Fatalf("sent %d combos while the trigger was still grabbed", sent)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func waitRegistered(t *testing.T, backend *stubBackend, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		if regs, _ := backend.counts(); regs == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("hotkey never registered")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	a, _, backend := newTestApp(t, config.Default())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	waitRegistered(t, backend, 1)

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if _, unregs := backend.counts(); unregs != 1 {
		t.Fatalf("unregisters=%d want 1", unregs)
	}
}

func TestNewWithComponents_RefusesCapturedPaste(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.PasteKeys = "ctrl+v"
	backend := grabOnlyBackend{&stubBackend{}}

	_, err := NewWithComponents(cfg, "test", logger, Components{Backend: backend, Sender: &stubSender{}})
	if !errors.Is(err, ErrPasteCapturedByTrigger) {
		t.Fatalf("err=%v want ErrPasteCapturedByTrigger", err)
	}

	cfg.PasteKeys = "shift+insert"
	if _, err := NewWithComponents(cfg, "test", logger, Components{Backend: backend, Sender: &stubSender{}}); err != nil {
		t.Fatalf("distinct paste rejected: %v", err)
	}
}

func TestNew_RequiresBackend(t *testing.T) {
	logger, _ := test.NewNullLogger()
	if _, err := New(config.Default(), "test", logger, nil); err == nil {
		t.Fatalf("expected error without a hotkey backend")
	}
}

func TestNewWithComponents_RejectsBadCombos(t *testing.T) {
	logger, _ := test.NewNullLogger()
	for name, mutate := range map[string]func(*config.Config){
		"paste":   func(c *config.Config) { c.PasteKeys = "ctrl+" },
		"submit":  func(c *config.Config) { c.SubmitKeys = "hyper+enter" },
		"pattern": func(c *config.Config) { c.WindowTitlePattern = "(" },
		"backend": func(c *config.Config) { c.Backends = []string{"uia"} },
	} {
		cfg := config.Default()
		mutate(cfg)
		_, err := NewWithComponents(cfg, "test", logger, Components{
			Backend: &stubBackend{},
			Sender:  &stubSender{},
		})
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestSameCombo(t *testing.T) {
	cases := []struct {
		hotkey string
		paste  keys.Combo
		want   bool
	}{
		{"ctrl+v", keys.Combo{Key: "v", Modifiers: []string{"ctrl"}}, true},
		{"Control+V", keys.Combo{Key: "v", Modifiers: []string{"ctrl"}}, true},
		{"shift+ctrl+v", keys.Combo{Key: "v", Modifiers: []string{"ctrl", "shift"}}, true},
		{"ctrl+shift+v", keys.Combo{Key: "v", Modifiers: []string{"ctrl"}}, false},
		{"cmd+v", keys.Combo{Key: "v", Modifiers: []string{"ctrl"}}, false},
	}
	for _, c := range cases {
		if got := sameCombo(c.hotkey, c.paste); got != c.want {
			t.Fatalf("sameCombo(%q, %s)=%v want %v", c.hotkey, c.paste, got, c.want)
		}
	}
}
