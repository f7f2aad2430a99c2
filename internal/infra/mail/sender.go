package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/agencyos/enrich-api/internal/infra/queue"
)

var newLeadTemplate = template.Must(template.New("new_lead").Parse(`<h2>New enriched lead</h2>
<p><strong>{{.FirstName}} {{.LastName}}</strong> &lt;{{.Email}}&gt;</p>
<ul>
  <li>Company: {{.CompanyName}}</li>
  <li>Title: {{.JobTitle}}</li>
  {{if .LinkedInURL}}<li>LinkedIn: <a href="{{.LinkedInURL}}">{{.LinkedInURL}}</a></li>{{end}}
  {{if .TwitterHandle}}<li>Twitter: {{.TwitterHandle}}</li>{{end}}
</ul>
<p><small>Source: {{.Provider}} at {{.EnrichedAt}}</small></p>
`))

func NewEmailSender(host string, port int, user, password, from, notifyTo string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		NotifyTo: notifyTo,
	}
}

// SendNewLead emails the sales inbox about a freshly enriched contact.
func (s *EmailSender) SendNewLead(event queue.ContactEnrichedEvent) error {
	body, err := renderNewLead(event)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.NotifyTo)
	m.SetHeader("Subject", newLeadSubject(event))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}
	return nil
}

func newLeadSubject(event queue.ContactEnrichedEvent) string {
	if event.Profile.CompanyName != "" {
		return fmt.Sprintf("New lead: %s %s (%s)", event.Profile.FirstName, event.Profile.LastName, event.Profile.CompanyName)
	}
	return fmt.Sprintf("New lead: %s", event.Email)
}

func renderNewLead(event queue.ContactEnrichedEvent) (string, error) {
	data := NewLeadEmailData{
		Email:         event.Email,
		FirstName:     event.Profile.FirstName,
		LastName:      event.Profile.LastName,
		CompanyName:   event.Profile.CompanyName,
		JobTitle:      event.Profile.JobTitle,
		LinkedInURL:   event.Profile.LinkedInURL,
		TwitterHandle: event.Profile.TwitterHandle,
		Provider:      event.Provider,
		EnrichedAt:    event.EnrichedAt.Format(time.RFC1123),
	}

	var body bytes.Buffer
	if err := newLeadTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return body.String(), nil
}
