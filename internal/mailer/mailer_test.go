package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestSMTPMailer_Send(t *testing.T) {
	d := &fakeDialer{}
	m := &SMTPMailer{from: "noreply@golf.test", dialer: d}

	err := m.Send(context.Background(), "seller@golf.test", "buyer@golf.test", "About your Putter", "Is it still available?")
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"seller@golf.test"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"buyer@golf.test"}, msg.GetHeader("Reply-To"))
	assert.Equal(t, []string{"About your Putter"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Is it still available?")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := &SMTPMailer{from: "x@golf.test", dialer: &fakeDialer{err: errors.New("relay down")}}
	err := m.Send(context.Background(), "seller@golf.test", "", "s", "b")
	assert.ErrorContains(t, err, "relay down")
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	d := &fakeDialer{}
	m := &SMTPMailer{from: "x@golf.test", dialer: d}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Send(ctx, "a@golf.test", "", "s", "b"), context.Canceled)
	assert.Empty(t, d.sent)
}

func TestNewSMTPMailer_DefaultsFrom(t *testing.T) {
	m := NewSMTPMailer("smtp.golf.test", 587, "user@golf.test", "pw", "")
	assert.Equal(t, "user@golf.test", m.from)
}
