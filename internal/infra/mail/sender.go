package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

//go:embed templates/*.html
var templates embed.FS

var salesQualifiedTmpl = template.Must(template.ParseFS(templates, "templates/sales_qualified.html"))

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	s := &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
	s.dial = func(m *gomail.Message) error {
		return gomail.NewDialer(s.Host, s.Port, s.User, s.Password).DialAndSend(m)
	}
	return s
}

// NotifySalesQualified mails the sales inbox about a new SQL.
func (s *EmailSender) NotifySalesQualified(ctx context.Context, event entity.FunnelEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.buildSalesQualified(event)
	if err != nil {
		return err
	}

	if err := s.dial(m); err != nil {
		return fmt.Errorf("send smtp: %w", err)
	}
	return nil
}

func (s *EmailSender) buildSalesQualified(event entity.FunnelEvent) (*gomail.Message, error) {
	body, err := renderSalesQualified(SalesQualifiedEmailData{
		Name:      event.Name,
		Company:   event.Company,
		Email:     event.Email,
		Service:   string(event.Service),
		LeadID:    event.LeadID,
		SQLID:     event.SQLID,
		Qualified: event.OccurredAt.Format(time.RFC1123),
	})
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	if event.Email != "" {
		m.SetHeader("Reply-To", event.Email)
	}
	m.SetHeader("Subject", fmt.Sprintf("Sales-qualified: %s (%s)", event.Name, event.Company))
	m.SetBody("text/html", body)
	return m, nil
}

func renderSalesQualified(data SalesQualifiedEmailData) (string, error) {
	var body bytes.Buffer
	if err := salesQualifiedTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return body.String(), nil
}
