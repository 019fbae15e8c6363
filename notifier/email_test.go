package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gomail "gopkg.in/mail.v2"

	"cine-insights/analyzer"
	"cine-insights/catalog"
	"cine-insights/config"
)

type recordingSender struct {
	messages []*gomail.Message
	err      error
}

func (s *recordingSender) DialAndSend(m ...*gomail.Message) error {
	s.messages = append(s.messages, m...)
	return s.err
}

func testConfig() config.EmailConfig {
	return config.EmailConfig{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		Username:  "api",
		Sender:    "reports@example.com",
		Password:  "secret-token-value",
		Recipient: "team@example.com",
	}
}

func testDigest() GrowthDigest {
	return GrowthDigest{
		RunID:       "run-1",
		Dimension:   catalog.DimensionGenre,
		Window:      3,
		GeneratedAt: time.Date(2021, time.October, 1, 10, 0, 0, 0, time.UTC),
		TitleCount:  42,
		Top: []analyzer.Trend{
			{Category: "Anime Features", AverageGrowth: 200, Years: 1},
			{Category: "Comedies", AverageGrowth: -50, Years: 2},
		},
		Latest: []analyzer.GrowthRow{
			{Category: "Anime Features", Year: 2021, Count: 3, Change: analyzer.Percent(200)},
			{Category: "Horror", Year: 2021, Count: 1},
		},
	}
}

func TestRenderGrowthReport(t *testing.T) {
	n := NewEmailNotifierWithSender(testConfig(), &recordingSender{})
	html, err := n.RenderGrowthReport(testDigest())
	if err != nil {
		t.Fatalf("RenderGrowthReport failed: %v", err)
	}

	for _, want := range []string{
		"October 1, 2021",
		"Anime Features",
		"200.00%",
		"-50.00%",
		`class="down"`,
		"2021 by genre",
		"<td>-</td>",
		"Run run-1",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}

func TestRenderGrowthReportWithoutTrends(t *testing.T) {
	n := NewEmailNotifierWithSender(testConfig(), &recordingSender{})
	d := testDigest()
	d.Top = nil
	d.Latest = nil

	html, err := n.RenderGrowthReport(d)
	if err != nil {
		t.Fatalf("RenderGrowthReport failed: %v", err)
	}
	if !strings.Contains(html, "No category has a defined change") {
		t.Error("expected empty report notice")
	}
}

func TestNotifyGrowthReport(t *testing.T) {
	sender := &recordingSender{}
	n := NewEmailNotifierWithSender(testConfig(), sender)

	if err := n.NotifyGrowthReport(context.Background(), testDigest()); err != nil {
		t.Fatalf("NotifyGrowthReport failed: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.messages))
	}

	m := sender.messages[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "team@example.com" {
		t.Errorf("To = %v", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "genre growth") {
		t.Errorf("Subject = %v", got)
	}
}

func TestNotifyGrowthReportSendError(t *testing.T) {
	sendErr := errors.New("connection refused")
	n := NewEmailNotifierWithSender(testConfig(), &recordingSender{err: sendErr})

	err := n.NotifyGrowthReport(context.Background(), testDigest())
	if !errors.Is(err, sendErr) {
		t.Fatalf("NotifyGrowthReport() error = %v, want %v", err, sendErr)
	}
}

func TestNotifyGrowthReportCancelled(t *testing.T) {
	sender := &recordingSender{}
	n := NewEmailNotifierWithSender(testConfig(), sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.NotifyGrowthReport(ctx, testDigest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("NotifyGrowthReport() error = %v, want context.Canceled", err)
	}
	if len(sender.messages) != 0 {
		t.Error("no message should be sent after cancellation")
	}
}

func TestPlainGrowthReport(t *testing.T) {
	text := PlainGrowthReport(testDigest())
	if !strings.Contains(text, "1. Anime Features 200.00%") {
		t.Errorf("plain report missing ranking: %s", text)
	}
}

func TestNewEmailNotifierRequiresHost(t *testing.T) {
	cfg := testConfig()
	cfg.SMTPHost = ""
	if _, err := NewEmailNotifier(cfg); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("NewEmailNotifier() error = %v, want ErrNotConfigured", err)
	}
}

func TestSendTestEmail(t *testing.T) {
	sender := &recordingSender{}
	n := NewEmailNotifierWithSender(testConfig(), sender)
	if err := n.SendTestEmail(); err != nil {
		t.Fatalf("SendTestEmail failed: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.messages))
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"short":              "***",
		"secret-token-value": "secr...alue",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
