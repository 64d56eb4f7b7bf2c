package email

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/mail.v2"
)

// composeMIME builds the MIME message for msg. When both bodies are present
// the result is multipart/alternative with the HTML part preferred.
func composeMIME(from, fromName string, msg Message, now time.Time) *mail.Message {
	m := mail.NewMessage()

	m.SetAddressHeader("From", from, fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetDateHeader("Date", now)
	m.SetHeader("Message-ID", messageID(from))

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	return m
}

// renderMIME serializes msg to RFC 5322 bytes.
func renderMIME(from, fromName string, msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := composeMIME(from, fromName, msg, now).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("email: failed to render message: %w", err)
	}
	return buf.Bytes(), nil
}

func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
