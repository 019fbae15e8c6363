package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	defer Init(Config{})

	Info().Str("component", "test").Msg("hello")
	Debug().Msg("verbose")

	out := buf.String()
	if !strings.Contains(out, `"component":"test"`) || !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("unexpected log output: %s", out)
	}
	if !strings.Contains(out, "verbose") {
		t.Errorf("debug event missing at debug level: %s", out)
	}
}

func TestInitRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "error", Output: &buf})
	defer Init(Config{})

	Info().Msg("dropped")
	Error().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info events should be filtered at error level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("error event missing: %s", out)
	}
}

func TestErrLogsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "error", Output: &buf})
	defer Init(Config{})

	Err(errors.New("boom")).Msg("import failed")

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}
