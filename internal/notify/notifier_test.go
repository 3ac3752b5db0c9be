package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"dupr-sync-service/internal/domain"
)

type fakeSendClient struct {
	sent []*sgmail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSendClient) Send(email *sgmail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.resp, f.err
}

func sampleReport() domain.Report {
	report := domain.NewReport(time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC))
	report.Record(domain.RowOutcome{Row: 1, FullName: "John Doe", Status: domain.StatusAddedToClub})
	report.Record(domain.RowOutcome{Row: 2, FullName: "Ghost Player", Status: domain.StatusNotFound})
	report.Finished = report.Started.Add(time.Minute)
	return report
}

func TestNotifyRun(t *testing.T) {
	client := &fakeSendClient{resp: &rest.Response{StatusCode: 202}}
	mailer := &Mailer{
		cfg:    Config{From: "sync@example.com", To: "ops@example.com", FromName: "Roster Sync"},
		client: client,
	}

	if err := mailer.NotifyRun(context.Background(), sampleReport()); err != nil {
		t.Fatalf("NotifyRun: %v", err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(client.sent))
	}
	if got := client.sent[0].Subject; !strings.Contains(got, "2 rows, 1 enrolled") {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestNotifyRunRejectedByAPI(t *testing.T) {
	client := &fakeSendClient{resp: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
	mailer := &Mailer{cfg: Config{To: "ops@example.com"}, client: client}

	err := mailer.NotifyRun(context.Background(), sampleReport())
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNotifyRunTransportError(t *testing.T) {
	client := &fakeSendClient{err: errors.New("dial tcp: timeout")}
	mailer := &Mailer{cfg: Config{To: "ops@example.com"}, client: client}

	if err := mailer.NotifyRun(context.Background(), sampleReport()); err == nil {
		t.Fatal("expected error")
	}
}

func TestFormatSummary(t *testing.T) {
	plain, html := FormatSummary(sampleReport())

	for _, want := range []string{"ADDED_TO_CLUB: 1", "NOT_FOUND: 1", "Rows processed: 2, enrolled: 1"} {
		if !strings.Contains(plain, want) {
			t.Errorf("plain body missing %q:\n%s", want, plain)
		}
	}
	if !strings.Contains(html, "<li>ADDED_TO_CLUB: 1</li>") {
		t.Errorf("html body missing status list:\n%s", html)
	}
}
