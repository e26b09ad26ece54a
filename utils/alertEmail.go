package utils

import (
	"IDMS/models"
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailAlerter emails on-call clinicians when a symptom check ends severe or critical.
type EmailAlerter struct {
	sender     mailSender
	from       string
	recipients []string
}

// NewEmailAlerter creates an alerter that sends through the given SMTP server.
func NewEmailAlerter(host string, port int, user, pass string, recipients []string) (*EmailAlerter, error) {
	if err := ValidateEmails(recipients); err != nil {
		return nil, fmt.Errorf("invalid alert recipients: %w", err)
	}
	return &EmailAlerter{
		sender:     gomail.NewDialer(host, port, user, pass),
		from:       user,
		recipients: recipients,
	}, nil
}

func (a *EmailAlerter) NotifyHighSeverity(ctx context.Context, session *models.SymptomCheckerSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	disease := "unknown"
	if session.PrimarySuspectedDisease != nil {
		disease = session.PrimarySuspectedDisease.Name
	}
	subject := fmt.Sprintf("[%s] Symptom check %s needs attention", strings.ToUpper(string(session.SeverityLevel)), session.ID)

	m := gomail.NewMessage()
	m.SetHeader("From", a.from)
	m.SetHeader("To", a.recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", fmt.Sprintf(
		"Session: %s\nSeverity: %s\nRisk score: %d\nSuspected disease: %s\nSymptoms: %s\nRecommendation: %s\n",
		session.ID, session.SeverityLevel, session.OverallRiskScore, disease,
		strings.Join(session.AllSymptoms(), ", "), session.Recommendation,
	))

	htmlBody := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Symptom check alert</title>
		<style>
			body { font-family: Arial, sans-serif; background-color: #f4f4f4; }
			.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px; }
			.severity { font-weight: bold; color: #c0392b; }
		</style>
	</head>
	<body>
		<div class="container">
			<h1>Symptom check alert</h1>
			<p>Session <strong>` + html.EscapeString(session.ID) + `</strong> was assessed as
			<span class="severity">` + html.EscapeString(string(session.SeverityLevel)) + `</span>.</p>
			<p>Suspected disease: ` + html.EscapeString(disease) + `</p>
			<p>Risk score: ` + fmt.Sprint(session.OverallRiskScore) + `</p>
			<p>` + html.EscapeString(session.Recommendation) + `</p>
		</div>
	</body>
	</html>
	`
	m.AddAlternative("text/html", htmlBody)

	return a.sender.DialAndSend(m)
}

// NotifyDiagnosisDecision is a no-op: decisions are only streamed, never emailed.
func (a *EmailAlerter) NotifyDiagnosisDecision(context.Context, *models.PatientDiagnosis) error {
	return nil
}
