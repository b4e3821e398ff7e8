package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for asynchronous,
// best-effort notifications (welcome mail, login notification). The reset
// code email never goes through the queue; it is sent inline so delivery
// failure is observable by the caller.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome", "login_notification"
	Data     map[string]any `json:"data,omitempty"`
}
