package keys

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestParse(t *testing.T) {
	cases := map[string]Combo{
		"ctrl+v":       {Key: "v", Modifiers: []string{"ctrl"}},
		"Ctrl+V":       {Key: "v", Modifiers: []string{"ctrl"}},
		"enter":        {Key: "enter"},
		"return":       {Key: "enter"},
		"cmd+v":        {Key: "v", Modifiers: []string{"cmd"}},
		"win+alt+f4":   {Key: "f4", Modifiers: []string{"cmd", "alt"}},
		"shift+ctrl+v": {Key: "v", Modifiers: []string{"shift", "ctrl"}},
		"shift+ins":    {Key: "insert", Modifiers: []string{"shift"}},
		" control+shift+Return ": {Key: "enter", Modifiers: []string{"ctrl", "shift"}},
	}

	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got.Key != want.Key || !reflect.DeepEqual(got.Modifiers, want.Modifiers) {
			t.Fatalf("Parse(%q)=%+v want %+v", in, got, want)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "ctrl+", "hyper+v", "ctrl+shift"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q): expected error", in)
		}
	}
}

func TestCombo_String(t *testing.T) {
	c, _ := Parse("ctrl+shift+v")
	if c.String() != "ctrl+shift+v" {
		t.Fatalf("String()=%q", c.String())
	}
	if (Combo{Key: "enter"}).String() != "enter" {
		t.Fatalf("plain key String() mismatch")
	}
}

type scriptedSender struct {
	name  string
	err   error
	panic bool
	sent  []string
}

func (s *scriptedSender) Name() string { return s.name }

func (s *scriptedSender) Send(_ context.Context, c Combo) error {
	s.sent = append(s.sent, c.String())
	if s.panic {
		panic("injection crashed")
	}
	return s.err
}

func TestChainSender_FallsBack(t *testing.T) {
	logger, _ := test.NewNullLogger()
	first := &scriptedSender{name: "robotgo", panic: true}
	second := &scriptedSender{name: "native"}
	chain := NewChainSender(logger, first, second)

	c, _ := Parse("ctrl+v")
	if err := chain.Send(context.Background(), c); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(first.sent) != 1 || len(second.sent) != 1 {
		t.Fatalf("first=%v second=%v", first.sent, second.sent)
	}
}

func TestChainSender_StopsAtFirstSuccess(t *testing.T) {
	logger, _ := test.NewNullLogger()
	first := &scriptedSender{name: "robotgo"}
	second := &scriptedSender{name: "native"}

	if err := NewChainSender(logger, first, second).Send(context.Background(), Combo{Key: "enter"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(second.sent) != 0 {
		t.Fatalf("second sender used after success: %v", second.sent)
	}
}

func TestChainSender_AllFail(t *testing.T) {
	logger, _ := test.NewNullLogger()
	chain := NewChainSender(logger,
		&scriptedSender{name: "robotgo", err: errors.New("no display")},
		&scriptedSender{name: "native", err: ErrSenderNotAvailable},
	)

	err := chain.Send(context.Background(), Combo{Key: "enter"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrSenderNotAvailable) || !strings.Contains(err.Error(), "robotgo: no display") {
		t.Fatalf("err=%v", err)
	}

	if err := NewChainSender(logger).Send(context.Background(), Combo{Key: "enter"}); err == nil {
		t.Fatalf("empty chain should fail")
	}
}

func TestChainSender_CancelledContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := &scriptedSender{name: "robotgo"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewChainSender(logger, s).Send(ctx, Combo{Key: "enter"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	if len(s.sent) != 0 {
		t.Fatalf("sent after cancel: %v", s.sent)
	}
}
