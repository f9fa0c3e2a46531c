// Package email sends transactional mail over plain SMTP.
package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

type Mailer struct {
	address  string
	password string
	host     string
	port     string
}

func New(address, password, host, port string) Mailer {
	return Mailer{
		address:  address,
		password: password,
		host:     host,
		port:     port,
	}
}

func (m Mailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.address,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.address, m.password, m.host)
	addr := m.host + ":" + m.port

	if err := smtp.SendMail(addr, auth, m.address, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	return nil
}

// OrderConfirmation tells the customer their order was received. Totals
// are stored in cents.
func (m Mailer) OrderConfirmation(to, name, reference string, total int) error {
	subject := fmt.Sprintf("Pedido %s recebido", reference)
	body := fmt.Sprintf(
		"Olá %s,\r\n\r\n"+
			"Recebemos o seu pedido %s no valor de R$ %d,%02d.\r\n"+
			"Você receberá um novo email quando o pedido for enviado.\r\n\r\n"+
			"Aura Store",
		name, reference, total/100, total%100,
	)

	return m.Send(to, subject, body)
}
