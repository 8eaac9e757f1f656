// Package mailer renders embedded templates and delivers them over SMTP.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

const (
	FromName                    = "Hotel Reservations"
	maxRetries                  = 3
	ReservationApprovedTemplate = "reservation_approved.tmpl"
)

//go:embed "templates"
var FS embed.FS

// Client delivers one templated message to a named recipient.
type Client interface {
	Send(templateFile, username, email string, data any) error
}

// Message is a rendered template.
type Message struct {
	Subject   string
	PlainBody string
	HTMLBody  string
}

type templateData struct {
	Username string
	Data     any
}

// Render executes the subject, plainBody and htmlBody blocks of
// templateFile.
func Render(templateFile, username string, data any) (*Message, error) {
	in := templateData{Username: username, Data: data}
	path := "templates/" + templateFile

	text, err := template.ParseFS(FS, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", templateFile, err)
	}
	subject := new(bytes.Buffer)
	if err := text.ExecuteTemplate(subject, "subject", in); err != nil {
		return nil, err
	}
	plain := new(bytes.Buffer)
	if err := text.ExecuteTemplate(plain, "plainBody", in); err != nil {
		return nil, err
	}

	html, err := htmltemplate.ParseFS(FS, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", templateFile, err)
	}
	body := new(bytes.Buffer)
	if err := html.ExecuteTemplate(body, "htmlBody", in); err != nil {
		return nil, err
	}
	return &Message{Subject: subject.String(), PlainBody: plain.String(), HTMLBody: body.String()}, nil
}
