// Package mailer implements ports.Mailer over net/smtp, for the same
// reason the sibling adapters give: no SMTP/mail SDK appears anywhere
// in the retrieved example pack.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/ports"
)

type Client struct {
	host, from string
	port       int
	auth       smtp.Auth
	log        *logrus.Entry
}

func New(host string, port int, username, password, from string, log *logrus.Entry) *Client {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Client{host: host, port: port, from: from, auth: auth, log: log}
}

// Send delivers a templated message. Failures here are always
// non-fatal to the caller per spec §7 — callers log and retry at best
// effort rather than failing the originating request.
func (c *Client) Send(ctx context.Context, msg ports.Email) error {
	if c.host == "" {
		c.log.WithField("to", msg.To).Debug("mailer not configured, skipping send")
		return nil
	}

	body := msg.Text
	if msg.HTML != "" {
		body = msg.HTML
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", c.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	if msg.HTML != "" {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	return smtp.SendMail(addr, c.auth, c.from, []string{msg.To}, []byte(b.String()))
}
