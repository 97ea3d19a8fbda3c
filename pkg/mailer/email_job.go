package mailer

// Template names understood by the email worker.
const (
	TemplateVerifyAccount = "verify_account"
	TemplateOTP           = "otp"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending
// email. The auth workflows only enqueue; delivery happens in the worker
// so a mail outage never fails an already-committed signup.
type EmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject,omitempty"`
	Template string `json:"template,omitempty"`
	Name     string `json:"name,omitempty"`
	OTP      int    `json:"otp,omitempty"`
}
