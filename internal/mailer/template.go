// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const (
	// ResetSubject is the subject line of the reset email.
	ResetSubject = "Password Reset - Wordzy Admin"
	// PasswordChangedSubject is the subject line of the confirmation email.
	PasswordChangedSubject = "Password Changed - Wordzy Admin"
)

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(90deg, #3b82f6, #8b5cf6); padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .header h1 { color: white; margin: 0; }
    .content { background: #f8fafc; padding: 30px; border-radius: 0 0 10px 10px; }
    .password-box { background: white; padding: 20px; border-radius: 8px; border: 2px solid #3b82f6; margin: 20px 0; text-align: center; }
    .password { font-size: 24px; font-weight: bold; color: #3b82f6; letter-spacing: 2px; }
    .button { display: inline-block; padding: 12px 30px; background: linear-gradient(90deg, #3b82f6, #8b5cf6); color: white; text-decoration: none; border-radius: 8px; margin: 20px 0; font-weight: bold; }
    .warning { background: #fef3c7; border-left: 4px solid #f59e0b; padding: 15px; margin: 20px 0; }
    .footer { text-align: center; color: #64748b; font-size: 12px; margin-top: 30px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Password Reset</h1>
    </div>
    <div class="content">
      <p>Hello,</p>
      <p>We received a request to reset your password for your Wordzy Admin account.</p>

      <div class="password-box">
        <p style="margin: 0 0 10px 0; color: #64748b;">Your temporary password:</p>
        <div class="password">{{.TempPassword}}</div>
      </div>

      <div class="warning">
        <strong>Important:</strong> This temporary password will expire in 1 hour. Please change it immediately after logging in.
      </div>

      <p>You can also click the button below to go directly to the password change page:</p>

      <div style="text-align: center;">
        <a href="{{.ResetLink}}" class="button">Change Password Now</a>
      </div>

      <p><strong>Steps to reset your password:</strong></p>
      <ol>
        <li>Use the temporary password above to log in</li>
        <li>Click on "Change password" link</li>
        <li>Enter the temporary password and set a new password</li>
      </ol>

      <p>If you didn't request this password reset, please ignore this email or contact support if you have concerns.</p>

      <div class="footer">
        <p>This is an automated email from Wordzy Admin</p>
        <p>&copy; {{.Year}} Wordzy Admin. All rights reserved.</p>
      </div>
    </div>
  </div>
</body>
</html>
`))

var passwordChangedTemplate = template.Must(template.New("changed").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(90deg, #3b82f6, #8b5cf6); padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .header h1 { color: white; margin: 0; }
    .content { background: #f8fafc; padding: 30px; border-radius: 0 0 10px 10px; }
    .footer { text-align: center; color: #64748b; font-size: 12px; margin-top: 30px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Password Changed</h1>
    </div>
    <div class="content">
      <p>Hello,</p>
      <p>The password for your Wordzy Admin account was just changed.</p>
      <p>If this was you, no further action is needed. If you did not change your password, please reset it immediately and contact support.</p>
      <div class="footer">
        <p>This is an automated email from Wordzy Admin</p>
        <p>&copy; {{.Year}} Wordzy Admin. All rights reserved.</p>
      </div>
    </div>
  </div>
</body>
</html>
`))

type resetEmailData struct {
	TempPassword string
	ResetLink    string
	Year         int
}

// RenderResetEmail renders the reset email body. The temporary password is
// shown inline and the link carries the redemption token.
func RenderResetEmail(tempPassword, resetLink string) (string, error) {
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, resetEmailData{
		TempPassword: tempPassword,
		ResetLink:    resetLink,
		Year:         time.Now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("rendering reset email: %w", err)
	}
	return buf.String(), nil
}

// RenderPasswordChangedEmail renders the change confirmation body.
func RenderPasswordChangedEmail() (string, error) {
	var buf bytes.Buffer
	err := passwordChangedTemplate.Execute(&buf, struct{ Year int }{Year: time.Now().Year()})
	if err != nil {
		return "", fmt.Errorf("rendering password changed email: %w", err)
	}
	return buf.String(), nil
}
