package testutil

import (
	"context"
	"regexp"
	"sync"

	"github.com/yamdb/backend/internal/mailer"
)

var codePattern = regexp.MustCompile(`confirmation code is (\S+)`)

// RecordingMailer keeps every sent message in memory.
type RecordingMailer struct {
	mu       sync.Mutex
	Messages []mailer.Message
	Err      error
}

func (m *RecordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

// LastCode extracts the confirmation code from the newest message to addr.
func (m *RecordingMailer) LastCode(addr string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].To != addr {
			continue
		}
		if match := codePattern.FindStringSubmatch(m.Messages[i].Body); match != nil {
			return match[1]
		}
	}
	return ""
}

func (m *RecordingMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = nil
	m.Err = nil
}
