package notify

import (
	"alcyxob/gym-manager/internal/domain"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestMailNotifier_Welcome(t *testing.T) {
	sender := &recordingSender{}
	n := NewMailNotifier(sender, "Gimnasio Central")

	member := &domain.Member{
		Name:      "Ana <Torres>",
		Email:     "ana@example.com",
		ExpiresAt: time.Date(2026, 11, 16, 0, 0, 0, 0, time.UTC),
	}
	plan := &domain.Plan{Name: "Premium", Price: 150}

	require.NoError(t, n.Welcome(context.Background(), member, plan))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Bienvenido a Gimnasio Central", msg.Subject)
	assert.Contains(t, msg.HTML, "S/ 150.00")
	assert.Contains(t, msg.HTML, "16/11/2026")
	assert.Contains(t, msg.HTML, "Ana &lt;Torres&gt;")
}

func TestMailNotifier_ReminderPropagatesSendError(t *testing.T) {
	sender := &recordingSender{err: errors.New("boom")}
	n := NewMailNotifier(sender, "Gimnasio")

	err := n.ExpiryReminder(context.Background(), &domain.Member{Email: "x@example.com"}, nil)
	assert.EqualError(t, err, "boom")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "S/ 80.00", FormatPrice(80))
	assert.Equal(t, "S/ 99.90", FormatPrice(99.9))
}
