// Package notify sends the batch summary email after a synchronization run.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"dupr-sync-service/internal/domain"
)

// Notifier delivers a run summary. Implementations must treat delivery
// failure as non-fatal; a lost email never fails a run.
type Notifier interface {
	NotifyRun(ctx context.Context, report domain.Report) error
}

// Config wires the sendgrid mailer.
type Config struct {
	APIKey   string
	From     string
	To       string
	FromName string
}

type sendClient interface {
	Send(email *sgmail.SGMailV3) (*rest.Response, error)
}

// Mailer sends summaries through sendgrid.
type Mailer struct {
	cfg    Config
	client sendClient
}

// NewMailer constructs a sendgrid-backed notifier.
func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg, client: sendgrid.NewSendClient(cfg.APIKey)}
}

// NotifyRun emails a plain-text and HTML summary of the run.
func (m *Mailer) NotifyRun(ctx context.Context, report domain.Report) error {
	subject := fmt.Sprintf("Roster sync: %d rows, %d enrolled", report.Processed(), report.Enrolled())
	plain, html := FormatSummary(report)

	from := sgmail.NewEmail(m.cfg.FromName, m.cfg.From)
	to := sgmail.NewEmail("", m.cfg.To)
	message := sgmail.NewSingleEmail(from, subject, to, plain, html)

	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sending summary mail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sending summary mail: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}

// FormatSummary renders the run report as plain text and HTML bodies.
func FormatSummary(report domain.Report) (plain, html string) {
	statuses := make([]domain.RowStatus, 0, len(report.Counts))
	for status := range report.Counts {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	var text strings.Builder
	var markup strings.Builder

	fmt.Fprintf(&text, "Run started %s, finished %s.\n",
		report.Started.Format("2006-01-02 15:04"), report.Finished.Format("2006-01-02 15:04"))
	fmt.Fprintf(&text, "Rows processed: %d, enrolled: %d.\n\n", report.Processed(), report.Enrolled())
	fmt.Fprintf(&markup, "<p>Run started %s, finished %s.</p>",
		report.Started.Format("2006-01-02 15:04"), report.Finished.Format("2006-01-02 15:04"))
	fmt.Fprintf(&markup, "<p>Rows processed: %d, enrolled: %d.</p><ul>", report.Processed(), report.Enrolled())

	for _, status := range statuses {
		fmt.Fprintf(&text, "%s: %d\n", status, report.Counts[status])
		fmt.Fprintf(&markup, "<li>%s: %d</li>", status, report.Counts[status])
	}
	markup.WriteString("</ul>")

	return text.String(), markup.String()
}
