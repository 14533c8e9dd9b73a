package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetup_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup("debug", &buf)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { logger.SetLevel(logrus.InfoLevel) })

	logger.WithField("backend", "native").Debug("lookup failed")

	line := buf.String()
	for _, want := range []string{"level=debug", `msg="lookup failed"`, "backend=native", "time="} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	if _, err := Setup("loud", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestPreview_NeverShowsContent(t *testing.T) {
	cases := map[string]string{
		"":           `""`,
		"hello":      "<redacted> (len=5)",
		"héllo wrld": "<redacted> (len=10)",
	}
	for in, want := range cases {
		if got := Preview(in); got != want {
			t.Fatalf("Preview(%q)=%q want %q", in, got, want)
		}
	}
}
