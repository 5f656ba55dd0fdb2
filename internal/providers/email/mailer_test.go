package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingProvider struct {
	to      []string
	subject string
	body    string
}

func (p *capturingProvider) Send(_ context.Context, to []string, subject, htmlBody string) error {
	p.to = to
	p.subject = subject
	p.body = htmlBody
	return nil
}

func TestSendInvitation(t *testing.T) {
	provider := &capturingProvider{}
	mailer := NewMailer(provider)

	err := mailer.SendInvitation(context.Background(), InvitationMail{
		Email:       "invitee@example.com",
		GroupName:   "Design Team",
		InviterName: "Olive",
		Role:        "member",
		AcceptURL:   "http://huddle.test/invitations/abc123",
		ExpiryDays:  7,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"invitee@example.com"}, provider.to)
	assert.Equal(t, "You've been invited to join Design Team", provider.subject)
	assert.Contains(t, provider.body, "Olive has invited you to join <strong>Design Team</strong>")
	assert.Contains(t, provider.body, `href="http://huddle.test/invitations/abc123"`)
	assert.Contains(t, provider.body, "expires in 7 days")
	assert.NotContains(t, provider.body, "{{")
}

func TestSendWelcome(t *testing.T) {
	provider := &capturingProvider{}
	mailer := NewMailer(provider)

	err := mailer.SendWelcome(context.Background(), WelcomeMail{
		Email:     "new@example.com",
		UserName:  "Nina",
		GroupName: "Design Team",
		Role:      "admin",
		GroupURL:  "http://huddle.test/groups/design-team",
	})
	require.NoError(t, err)

	assert.Equal(t, "Welcome to Design Team!", provider.subject)
	assert.Contains(t, provider.body, "Welcome aboard, Nina!")
	assert.Contains(t, provider.body, `href="http://huddle.test/groups/design-team"`)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := render("Hello {{name}}, welcome to {{groupName}}", map[string]string{
		"name": "Nina",
	})
	assert.Equal(t, "Hello Nina, welcome to {{groupName}}", out)
}
