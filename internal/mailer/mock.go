package mailer

import (
	"context"
	"sync"
)

// Mock gönderilenleri biriktirir; Err set edilirse her Send onu döner.
type Mock struct {
	mu   sync.Mutex
	Sent []Email
	Err  error
}

func (m *Mock) Send(ctx context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, e)
	return m.Err
}

// Last son gönderilen e-postayı döner; hiç yoksa ok=false.
func (m *Mock) Last() (Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return Email{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

func (m *Mock) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
