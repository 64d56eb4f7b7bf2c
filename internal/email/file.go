package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// FileSender writes each message as an .eml file into a directory instead
// of delivering it. Handy for inspecting the exact MIME output.
type FileSender struct {
	dir      string
	from     string
	fromName string
	now      func() time.Time
}

// NewFileSender creates a sender that writes into dir, creating it on first use.
func NewFileSender(dir, from, fromName string) (*FileSender, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	if from == "" {
		from = "notifier@localhost"
	}
	return &FileSender{dir: dir, from: from, fromName: fromName, now: time.Now}, nil
}

// Send renders msg and writes it to <dir>/<timestamp>_<subject>.eml.
func (f *FileSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	now := f.now()
	raw, err := renderMIME(f.from, f.fromName, msg, now)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", ErrSendFailed, err)
	}

	name := fmt.Sprintf("%s_%s.eml", now.UTC().Format("2006_01_02_150405"), sanitizeFilename(msg.Subject))
	if err := os.WriteFile(filepath.Join(f.dir, name), raw, 0644); err != nil {
		return fmt.Errorf("%w: failed to write message: %w", ErrSendFailed, err)
	}

	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
