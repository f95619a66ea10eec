package notification

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
}

// SMTPNotifier sends order outcome emails through a plain SMTP relay.
type SMTPNotifier struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPNotifier(config SMTPConfig) *SMTPNotifier {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPNotifier{
		config: config,
		dialer: dialer,
	}
}

func (n *SMTPNotifier) Notify(_ context.Context, event Event) error {
	subject, body := n.compose(event)

	m := gomail.NewMessage()
	m.SetHeader("From", n.config.FromAddress)
	m.SetHeader("To", event.RecipientEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("n.dialer.DialAndSend -> %w", err)
	}

	return nil
}

func (n *SMTPNotifier) compose(event Event) (string, string) {
	switch event.Kind {
	case EventOrderApproved:
		subject := fmt.Sprintf("Order %v confirmed", event.OrderNumber)
		body := fmt.Sprintf(`Hi %v,

Your payment for order %v has been confirmed. Total: %v.

Your ticket numbers: %v.

Good luck!
`, event.RecipientName, event.OrderNumber, event.Total.StringFixed(2), formatTicketNumbers(event.TicketNumbers))

		return subject, body
	case EventOrderRejected:
		subject := fmt.Sprintf("Order %v could not be verified", event.OrderNumber)
		body := fmt.Sprintf(`Hi %v,

We could not verify the payment for order %v.

Reason: %v

If you believe this is a mistake, reply to this email with your payment receipt.
`, event.RecipientName, event.OrderNumber, event.Reason)

		return subject, body
	default:
		return fmt.Sprintf("Update on order %v", event.OrderNumber), fmt.Sprintf("Hi %v,\n\nThere is an update on your order %v.\n", event.RecipientName, event.OrderNumber)
	}
}

func formatTicketNumbers(numbers []int) string {
	if len(numbers) == 0 {
		return "pending"
	}

	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%d", n)
	}

	return strings.Join(parts, ", ")
}
