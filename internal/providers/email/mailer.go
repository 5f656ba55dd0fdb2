package email

import (
	"context"
	"strconv"
)

type InvitationMail struct {
	Email       string
	GroupName   string
	InviterName string
	Role        string
	AcceptURL   string
	ExpiryDays  int
}

type WelcomeMail struct {
	Email     string
	UserName  string
	GroupName string
	Role      string
	GroupURL  string
}

// Mailer renders the domain templates and hands them to the configured
// provider.
type Mailer struct {
	provider Provider
}

func NewMailer(provider Provider) *Mailer {
	return &Mailer{provider: provider}
}

func (m *Mailer) SendInvitation(ctx context.Context, mail InvitationMail) error {
	values := map[string]string{
		"groupName":   mail.GroupName,
		"inviterName": mail.InviterName,
		"role":        mail.Role,
		"acceptUrl":   mail.AcceptURL,
		"expiryDays":  strconv.Itoa(mail.ExpiryDays),
	}
	return m.provider.Send(ctx,
		[]string{mail.Email},
		render(invitationSubject, values),
		render(invitationBody, values),
	)
}

func (m *Mailer) SendWelcome(ctx context.Context, mail WelcomeMail) error {
	values := map[string]string{
		"userName":  mail.UserName,
		"groupName": mail.GroupName,
		"role":      mail.Role,
		"groupUrl":  mail.GroupURL,
	}
	return m.provider.Send(ctx,
		[]string{mail.Email},
		render(welcomeSubject, values),
		render(welcomeBody, values),
	)
}
