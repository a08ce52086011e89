package mail

import "gopkg.in/gomail.v2"

type SalesQualifiedEmailData struct {
	Name      string
	Company   string
	Email     string
	Service   string
	LeadID    string
	SQLID     string
	Qualified string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string

	dial func(m *gomail.Message) error
}
