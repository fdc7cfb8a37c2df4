package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_RecordsMessages(t *testing.T) {
	c := NewConsole(nil)
	err := c.Send(context.Background(), Message{To: "a@b.com", Subject: "hi", Text: "body"})
	require.NoError(t, err)

	sent := c.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@b.com", sent[0].To)
}

func TestConsole_RejectsEmptyMessage(t *testing.T) {
	c := NewConsole(nil)
	assert.Error(t, c.Send(context.Background(), Message{To: "a@b.com"}))
	assert.Error(t, c.Send(context.Background(), Message{Text: "x"}))
	assert.Empty(t, c.Sent())
}

func TestBuildMIME_IncludesAttachment(t *testing.T) {
	raw, err := buildMIME("noreply@portal.test", Message{
		To:      "jane@example.com",
		Subject: "Your certificate",
		Text:    "Hello Jane",
		Attachments: []Attachment{
			{Filename: "cert.png", ContentType: "image/png", Content: []byte{0x89, 'P', 'N', 'G'}},
		},
	})
	require.NoError(t, err)

	s := string(raw)
	assert.True(t, strings.HasPrefix(s, "From: noreply@portal.test\r\n"))
	assert.Contains(t, s, "To: jane@example.com\r\n")
	assert.Contains(t, s, "multipart/mixed; boundary=")
	assert.Contains(t, s, "Hello Jane")
	assert.Contains(t, s, `attachment; filename="cert.png"`)
	assert.Contains(t, s, "iVBORw==")
}

func TestSendgrid_PrepareBuildsAttachments(t *testing.T) {
	s := NewSendgrid("key", "noreply@portal.test").(*sendgridMailer)
	m := s.prepare(Message{
		To:          "jane@example.com",
		ToName:      "Jane",
		Subject:     "Your certificate",
		HTML:        "<p>hi</p>",
		Attachments: []Attachment{{Filename: "c.png", ContentType: "image/png", Content: []byte("x")}},
	})
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "Your certificate", m.Personalizations[0].Subject)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "eA==", m.Attachments[0].Content)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/html", m.Content[0].Type)
}
