// utils/email.go
package utils

import (
	"fmt"
	"html"

	"go-ordering/models"

	"github.com/keighl/postmark"
	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sender delivers a single email through one provider
type sender interface {
	send(from, toEmail, subject, htmlContent string) error
}

type postmarkSender struct {
	client *postmark.Client
}

func (s postmarkSender) send(from, toEmail, subject, htmlContent string) error {
	_, err := s.client.SendEmail(postmark.Email{
		From:     from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	return err
}

type sendgridSender struct {
	client *sendgrid.Client
}

func (s sendgridSender) send(from, toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(mail.NewEmail("", from), subject, mail.NewEmail("", toEmail), htmlContent, htmlContent)

	resp, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// logSender only logs, used when no provider is configured
type logSender struct{}

func (logSender) send(_, toEmail, subject, _ string) error {
	log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email not sent, no provider configured")
	return nil
}

// EmailService handles sending emails using Postmark or SendGrid
type EmailService struct {
	sender  sender
	from    string
	baseURL string
}

func NewPostmarkEmailService(apiToken, from, baseURL string) *EmailService {
	return &EmailService{
		sender:  postmarkSender{client: postmark.NewClient(apiToken, "")},
		from:    from,
		baseURL: baseURL,
	}
}

func NewSendgridEmailService(apiKey, from, baseURL string) *EmailService {
	return &EmailService{
		sender:  sendgridSender{client: sendgrid.NewSendClient(apiKey)},
		from:    from,
		baseURL: baseURL,
	}
}

func NewNoopEmailService() *EmailService {
	return &EmailService{sender: logSender{}}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if err := es.sender.send(es.from, toEmail, subject, htmlContent); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	// logSender already reported the dropped email
	if _, dropped := es.sender.(logSender); !dropped {
		log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email sent")
	}
	return nil
}

// SendWelcomeEmail greets a freshly signed up user
func (es *EmailService) SendWelcomeEmail(user models.User) error {
	subject := "Welcome!"
	htmlContent := fmt.Sprintf(
		"<strong>Hi %s,</strong><br><br>Your account is ready. <a href=\"%s/auth/login\">Log in</a> and start ordering.",
		html.EscapeString(user.FirstName),
		es.baseURL,
	)

	return es.SendEmail(user.Email, subject, htmlContent)
}

// SendOrderConfirmedEmail notifies the business owner about a confirmed order
func (es *EmailService) SendOrderConfirmedEmail(owner models.User, business models.Business, order models.Order) error {
	subject := fmt.Sprintf("New order for %s", business.Name)
	htmlContent := fmt.Sprintf(
		"<strong>Hi %s,</strong><br><br>Order <strong>%s</strong> with %d product(s) was sent to <strong>%s</strong>.<br><a href=\"%s/business/orders\">See your orders</a>",
		html.EscapeString(owner.FirstName),
		order.ID.Hex(),
		len(order.Products),
		html.EscapeString(business.Name),
		es.baseURL,
	)

	return es.SendEmail(owner.Email, subject, htmlContent)
}

// SendOrderDeliveredEmail notifies the customer that the order was delivered
func (es *EmailService) SendOrderDeliveredEmail(customer models.User, business models.Business, order models.Order) error {
	subject := "Your order was delivered"
	htmlContent := fmt.Sprintf(
		"<strong>Hi %s,</strong><br><br>Your order <strong>%s</strong> from <strong>%s</strong> was delivered. Enjoy!<br><a href=\"%s/orders/%s/details\">Order details</a>",
		html.EscapeString(customer.FullName()),
		order.ID.Hex(),
		html.EscapeString(business.Name),
		es.baseURL,
		order.ID.Hex(),
	)

	return es.SendEmail(customer.Email, subject, htmlContent)
}
