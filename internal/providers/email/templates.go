package email

import "strings"

// Templates use {{name}} placeholders substituted by render. Unknown
// placeholders are left in place so a missing value is visible in the
// delivered mail rather than silently blank.

const invitationSubject = "You've been invited to join {{groupName}}"

const invitationBody = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>You've been invited!</h2>
  <p>{{inviterName}} has invited you to join <strong>{{groupName}}</strong> as a <strong>{{role}}</strong>.</p>
  <p>
    <a href="{{acceptUrl}}" style="display: inline-block; padding: 12px 24px; background: #4f46e5; color: #fff; text-decoration: none; border-radius: 6px;">
      Accept invitation
    </a>
  </p>
  <p style="color: #6b7280; font-size: 14px;">This invitation expires in {{expiryDays}} days. If you weren't expecting it, you can ignore this email.</p>
</div>`

const welcomeSubject = "Welcome to {{groupName}}!"

const welcomeBody = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome aboard, {{userName}}!</h2>
  <p>You are now a <strong>{{role}}</strong> of <strong>{{groupName}}</strong>.</p>
  <p>
    <a href="{{groupUrl}}" style="display: inline-block; padding: 12px 24px; background: #4f46e5; color: #fff; text-decoration: none; border-radius: 6px;">
      Open {{groupName}}
    </a>
  </p>
</div>`

func render(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
