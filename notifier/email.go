package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"

	"cine-insights/analyzer"
	"cine-insights/catalog"
	"cine-insights/config"
	"cine-insights/logging"
)

var ErrNotConfigured = errors.New("email notifier not configured")

// GrowthDigest is the content of one growth report email
type GrowthDigest struct {
	RunID       string
	Dimension   catalog.Dimension
	Window      int
	GeneratedAt time.Time
	TitleCount  int
	// Top holds the fastest growing categories over the window
	Top []analyzer.Trend
	// Latest holds the growth rows of the most recent year
	Latest []analyzer.GrowthRow
}

// Sender delivers a composed message. gomail's Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier handles sending email notifications
type EmailNotifier struct {
	cfg          config.EmailConfig
	sender       Sender
	htmlTemplate *template.Template
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"change": func(c analyzer.Change) string {
		if !c.Valid {
			return "-"
		}
		return c.String()
	},
	"pct": func(v float64) string { return analyzer.Percent(v).String() },
}).Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Cine Insights - Growth Report</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; }
        h1 { color: #e50914; }
        h2 { color: #0071c5; margin-top: 30px; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        th { background-color: #f4f4f4; text-align: left; padding: 10px; }
        td { padding: 10px; border-bottom: 1px solid #ddd; }
        .up { color: #2e7d32; }
        .down { color: #c62828; }
        .footer { font-size: 12px; color: #666; margin-top: 50px; text-align: center; }
        .count { font-weight: bold; color: #e50914; }
    </style>
</head>
<body>
    <h1>Cine Insights - Growth Report</h1>
    <p>Generated on {{.Date}} from <span class="count">{{.TitleCount}}</span> titles, grouped by {{.Dimension}}.</p>

    {{if .Top}}
    <h2>Fastest growing over the last {{.Window}} years</h2>
    <table>
        <tr>
            <th>{{.Dimension}}</th>
            <th>Average growth</th>
            <th>Years compared</th>
        </tr>
        {{range .Top}}
        <tr>
            <td>{{.Category}}</td>
            <td class="{{if ge .AverageGrowth 0.0}}up{{else}}down{{end}}">{{pct .AverageGrowth}}</td>
            <td>{{.Years}}</td>
        </tr>
        {{end}}
    </table>
    {{else}}
    <p>No category has a defined change in the last {{.Window}} years.</p>
    {{end}}

    {{if .Latest}}
    <h2>{{.LatestYear}} by {{.Dimension}}</h2>
    <table>
        <tr>
            <th>{{.Dimension}}</th>
            <th>Titles added</th>
            <th>Change</th>
        </tr>
        {{range .Latest}}
        <tr>
            <td>{{.Category}}</td>
            <td>{{.Count}}</td>
            <td>{{change .Change}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    <div class="footer">
        <p>Run {{.RunID}}. This is an automated email from Cine Insights. Please do not reply.</p>
    </div>
</body>
</html>
`))

// NewEmailNotifier creates a notifier sending through the configured SMTP server
func NewEmailNotifier(cfg config.EmailConfig) (*EmailNotifier, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	return NewEmailNotifierWithSender(cfg, d), nil
}

// NewEmailNotifierWithSender creates a notifier that hands messages to sender
func NewEmailNotifierWithSender(cfg config.EmailConfig, sender Sender) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, sender: sender, htmlTemplate: digestTemplate}
}

// RenderGrowthReport renders the HTML body of a digest
func (n *EmailNotifier) RenderGrowthReport(d GrowthDigest) (string, error) {
	latestYear := 0
	if len(d.Latest) > 0 {
		latestYear = d.Latest[0].Year
	}
	data := struct {
		GrowthDigest
		Date       string
		LatestYear int
	}{
		GrowthDigest: d,
		Date:         d.GeneratedAt.Format("January 2, 2006 at 3:04 PM"),
		LatestYear:   latestYear,
	}

	var body bytes.Buffer
	if err := n.htmlTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return body.String(), nil
}

// PlainGrowthReport renders the plain text alternative of a digest
func PlainGrowthReport(d GrowthDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cine Insights Growth Report\n\n")
	fmt.Fprintf(&b, "Generated on %s from %d titles, grouped by %s.\n\n",
		d.GeneratedAt.Format("January 2, 2006 at 3:04 PM"), d.TitleCount, d.Dimension)
	if len(d.Top) == 0 {
		fmt.Fprintf(&b, "No category has a defined change in the last %d years.\n", d.Window)
	} else {
		fmt.Fprintf(&b, "Fastest growing over the last %d years:\n", d.Window)
		for i, t := range d.Top {
			fmt.Fprintf(&b, "%d. %s %s\n", i+1, t.Category, analyzer.Percent(t.AverageGrowth))
		}
	}
	fmt.Fprintf(&b, "\nRun %s. This is an automated email from Cine Insights. Please do not reply.", d.RunID)
	return b.String()
}

// NotifyGrowthReport emails a growth digest to the configured recipient
func (n *EmailNotifier) NotifyGrowthReport(ctx context.Context, d GrowthDigest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := n.RenderGrowthReport(d)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.Sender)
	m.SetHeader("To", n.cfg.Recipient)
	m.SetHeader("Subject", fmt.Sprintf("Cine Insights: %s growth over the last %d years", d.Dimension, d.Window))
	m.SetBody("text/plain", PlainGrowthReport(d))
	m.AddAlternative("text/html", html)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logging.Info().
		Str("recipient", n.cfg.Recipient).
		Str("run_id", d.RunID).
		Int("categories", len(d.Top)).
		Msg("Growth report email sent")
	return nil
}

// SendTestEmail sends a short message to verify the SMTP settings
func (n *EmailNotifier) SendTestEmail() error {
	logging.Info().
		Str("host", n.cfg.SMTPHost).
		Int("port", n.cfg.SMTPPort).
		Str("sender", n.cfg.Sender).
		Str("token", maskSecret(n.cfg.Password)).
		Str("recipient", n.cfg.Recipient).
		Msg("Sending test email")

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.Sender)
	m.SetHeader("To", n.cfg.Recipient)
	m.SetHeader("Subject", "Test Email from Cine Insights")
	m.SetBody("text/html", "<h1>Test Email</h1><p>This is a test email from Cine Insights to verify the SMTP configuration.</p>")

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send test email: %w", err)
	}
	logging.Info().Str("recipient", n.cfg.Recipient).Msg("Test email sent")
	return nil
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}
