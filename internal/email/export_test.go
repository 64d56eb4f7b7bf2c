package email

import (
	"time"

	"gopkg.in/mail.v2"
)

func NewSMTPSenderWithDialer(d interface {
	DialAndSend(m ...*mail.Message) error
}, from, fromName string, now func() time.Time) *SMTPSender {
	s := newSMTPSender(d, from, fromName)
	s.now = now
	return s
}

func SetFileSenderClock(f *FileSender, now func() time.Time) {
	f.now = now
}
