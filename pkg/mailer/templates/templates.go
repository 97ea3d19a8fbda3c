package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Minimal HTML bodies for the two OTP emails. The code expires three
// minutes after issuance; the copy reflects that.

var verifyTmpl = template.Must(template.New("verify").Parse(`<html><body>
<p>Hi {{.Name}},</p>
<p>Welcome to Clinica. Use the code below to verify your email address:</p>
<h2>{{.OTP}}</h2>
<p>The code expires in 3 minutes.</p>
</body></html>`))

var otpTmpl = template.Must(template.New("otp").Parse(`<html><body>
<p>Hi {{.Name}},</p>
<p>Your Clinica verification code:</p>
<h2>{{.OTP}}</h2>
<p>The code expires in 3 minutes. If you did not request it, you can ignore this email.</p>
</body></html>`))

type data struct {
	Name string
	OTP  int
}

// RenderVerifyAccount renders the signup verification email.
func RenderVerifyAccount(name string, otp int) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := verifyTmpl.Execute(&buf, data{Name: name, OTP: otp}); err != nil {
		return "", "", fmt.Errorf("render verify template: %w", err)
	}
	return "Verify your Clinica account", buf.String(), nil
}

// RenderOTP renders the resend / forget-password email.
func RenderOTP(name string, otp int) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := otpTmpl.Execute(&buf, data{Name: name, OTP: otp}); err != nil {
		return "", "", fmt.Errorf("render otp template: %w", err)
	}
	return "Your Clinica verification code", buf.String(), nil
}
