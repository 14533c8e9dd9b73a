// Package forwarder implements the hotkey handler that moves clipboard text
// into the target window: focus it, paste, submit.
package forwarder

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanaroSch/clipforward/internal/clipboard"
	"github.com/TanaroSch/clipforward/internal/keys"
	"github.com/TanaroSch/clipforward/internal/logging"
	"github.com/TanaroSch/clipforward/internal/window"
)

// Outcome describes how a single trigger ended.
type Outcome int

const (
	OutcomeBusy Outcome = iota
	OutcomePaused
	OutcomeEmptyClipboard
	OutcomeClipboardError
	OutcomeWindowNotFound
	OutcomeFocusFailed
	OutcomeKeySendFailed
	OutcomeFault
	OutcomeForwarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBusy:
		return "busy"
	case OutcomePaused:
		return "paused"
	case OutcomeEmptyClipboard:
		return "empty_clipboard"
	case OutcomeClipboardError:
		return "clipboard_error"
	case OutcomeWindowNotFound:
		return "window_not_found"
	case OutcomeFocusFailed:
		return "focus_failed"
	case OutcomeKeySendFailed:
		return "key_send_failed"
	case OutcomeFault:
		return "fault"
	case OutcomeForwarded:
		return "forwarded"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Locator finds the target window. *window.Chain satisfies it.
type Locator interface {
	Find(ctx context.Context, pattern *regexp.Regexp) (window.Window, error)
	TitleSample(ctx context.Context, n int) []string
}

// Suspender temporarily releases the trigger combination so that the
// synthesized paste is not captured by it. *hotkey.Listener satisfies it.
type Suspender interface {
	Suspend() (resume func() error, err error)
}

// Options are the per-trigger parameters.
type Options struct {
	Pattern         *regexp.Regexp
	Paste           keys.Combo
	Submit          keys.Combo
	FocusDelay      time.Duration
	SubmitDelay     time.Duration
	TitleSampleSize int
}

// Forwarder handles trigger events. At most one trigger is processed at a
// time; triggers arriving meanwhile are dropped.
type Forwarder struct {
	guard  sync.Mutex
	paused atomic.Bool

	clip    clipboard.Reader
	windows Locator
	sender  keys.Sender
	opts    Options
	log     logrus.FieldLogger

	suspender Suspender
	sleep     func(time.Duration)
}

// New creates a forwarder. Call SetSuspender before the first trigger when
// the trigger and paste combinations can collide.
func New(clip clipboard.Reader, windows Locator, sender keys.Sender, opts Options, log logrus.FieldLogger) *Forwarder {
	return &Forwarder{
		clip:    clip,
		windows: windows,
		sender:  sender,
		opts:    opts,
		log:     log,
		sleep:   time.Sleep,
	}
}

// SetSuspender installs the hotkey registration to release around key synthesis.
func (f *Forwarder) SetSuspender(s Suspender) {
	f.suspender = s
}

// SetPaused enables or disables forwarding.
func (f *Forwarder) SetPaused(paused bool) {
	f.paused.Store(paused)
	f.log.WithField("paused", paused).Info("Forwarding pause state changed")
}

// Paused reports whether forwarding is disabled.
func (f *Forwarder) Paused() bool {
	return f.paused.Load()
}

// Trigger adapts HandleTrigger to the hotkey listener callback.
func (f *Forwarder) Trigger(ctx context.Context) {
	outcome := f.HandleTrigger(ctx)
	f.log.WithField("outcome", outcome.String()).Debug("Trigger handled")
}

// HandleTrigger forwards the clipboard once. It never panics and always
// releases the guard before returning.
func (f *Forwarder) HandleTrigger(ctx context.Context) Outcome {
	if !f.guard.TryLock() {
		f.log.Debug("Trigger ignored; previous one still in flight")
		return OutcomeBusy
	}
	defer f.guard.Unlock()

	if f.paused.Load() {
		f.log.Debug("Trigger ignored; forwarding paused")
		return OutcomePaused
	}

	var text string
	err := protect("clipboard", func() (err error) {
		text, err = f.clip.ReadText()
		return err
	})
	switch {
	case isFault(err):
		return f.fault(err)
	case err != nil:
		f.log.WithError(err).Warn("Clipboard unreadable; skipping")
		return OutcomeClipboardError
	case text == "":
		f.log.Info("Clipboard empty; skipping")
		return OutcomeEmptyClipboard
	}

	var target window.Window
	err = protect("window lookup", func() (err error) {
		target, err = f.windows.Find(ctx, f.opts.Pattern)
		return err
	})
	switch {
	case errors.Is(err, window.ErrNotFound):
		f.log.WithField("pattern", f.patternString()).Warn("Target window not found")
		f.logTitleSample(ctx)
		return OutcomeWindowNotFound
	case err != nil:
		return f.fault(err)
	}

	wlog := f.log.WithFields(logrus.Fields{
		"backend": target.Backend(),
		"title":   target.Title(),
	})
	if err := protect("focus", func() error { return target.Focus(ctx) }); err != nil {
		wlog.WithError(err).Warn("Failed to focus target window")
		return OutcomeFocusFailed
	}
	wlog.Info("Focused target window")

	f.sleep(f.opts.FocusDelay)

	if err := f.sendKeys(ctx); err != nil {
		if isFault(err) {
			return f.fault(err)
		}
		wlog.WithError(err).Warn("Failed to send keys")
		return OutcomeKeySendFailed
	}

	wlog.WithField("clipboard", logging.Preview(text)).Info("Forwarded clipboard")
	return OutcomeForwarded
}

// sendKeys taps paste, waits, taps submit. The trigger registration is
// released for the duration when a suspender is set. Nothing is sent if it
// cannot be released.
func (f *Forwarder) sendKeys(ctx context.Context) error {
	if f.suspender != nil {
		var resume func() error
		err := protect("suspend hotkey", func() (err error) {
			resume, err = f.suspender.Suspend()
			return err
		})
		if err != nil {
			return fmt.Errorf("could not suspend hotkey: %w", err)
		}
		if resume != nil {
			defer func() {
				if err := protect("resume hotkey", resume); err != nil {
					f.log.WithError(err).Warn("Could not resume hotkey")
				}
			}()
		}
	}

	if err := protect("paste", func() error { return f.sender.Send(ctx, f.opts.Paste) }); err != nil {
		return err
	}
	f.sleep(f.opts.SubmitDelay)
	return protect("submit", func() error { return f.sender.Send(ctx, f.opts.Submit) })
}

func (f *Forwarder) patternString() string {
	if f.opts.Pattern == nil {
		return "<none>"
	}
	return f.opts.Pattern.String()
}

func (f *Forwarder) logTitleSample(ctx context.Context) {
	var titles []string
	err := protect("title sample", func() error {
		titles = f.windows.TitleSample(ctx, f.opts.TitleSampleSize)
		return nil
	})
	if err != nil {
		f.log.WithError(err).Debug("Listing titles failed")
		return
	}
	f.log.WithField("titles", titles).Info("Visible window titles sample")
}

func (f *Forwarder) fault(err error) Outcome {
	f.log.WithError(err).Error("Hotkey handler failed")
	return OutcomeFault
}

// faultError marks a panic recovered from an external call.
type faultError struct {
	step  string
	value any
}

func (e *faultError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.step, e.value)
}

func isFault(err error) bool {
	var fe *faultError
	return errors.As(err, &fe)
}

// protect runs fn and converts a panic into a *faultError.
func protect(step string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &faultError{step: step, value: r}
		}
	}()
	return fn()
}
