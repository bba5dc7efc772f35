package services

import (
	"fmt"
	"net/smtp"

	"github.com/leekchan/accounting"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MailSender is the outbound mail contract: attempt once, report the
// error, never retry. Callers that must not block on delivery send from
// a goroutine and log the failure.
type MailSender interface {
	SendHTMLEmail(to, subject, htmlBody string) error
}

type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type Mailer struct {
	config MailConfig
}

func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{
		config: cfg,
	}
}

func (m *Mailer) SendHTMLEmail(to, subject, htmlBody string) error {
	headers := map[string]string{
		"From":         m.config.From,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"UTF-8\"",
	}

	var msg string
	for k, v := range headers {
		msg += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	msg += "\r\n" + htmlBody

	auth := smtp.PlainAuth(m.config.From, m.config.Username, m.config.Password, m.config.Host)
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg))
	if err != nil {
		log.Printf("Failed to send HTML email to %s: %v", to, err)
		return fmt.Errorf("failed to send HTML email: %w", err)
	}

	return nil
}

var money = accounting.Accounting{Symbol: "$", Precision: 2}

func BuildOrderStatusEmailBody(fullName, orderID, status string, total decimal.Decimal) string {
	return fmt.Sprintf(`
        <!DOCTYPE html>
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Your order <strong>#%s</strong> (%s) is now <strong>%s</strong>.</p>
            <p>Thank you for shopping with us.</p>
        </body>
        </html>
    `, fullName, orderID, money.FormatMoneyDecimal(total), status)
}

func BuildPasswordResetEmailBody(resetLink string) string {
	return fmt.Sprintf(`
        <!DOCTYPE html>
        <html>
        <body>
            <p>We received a request to reset the password for your account.</p>
            <p>Click <a href="%s">here</a> to choose a new password. The link expires in 1 hour.</p>
            <p>If you did not request a password reset, ignore this email.</p>
        </body>
        </html>
    `, resetLink)
}

func BuildContactEmailBody(name, email, phone, message string) string {
	if phone == "" {
		phone = "N/A"
	}
	return fmt.Sprintf(`
        <!DOCTYPE html>
        <html>
        <body>
            <p><strong>Name:</strong> %s</p>
            <p><strong>Email:</strong> %s</p>
            <p><strong>Phone:</strong> %s</p>
            <p><strong>Message:</strong></p>
            <p>%s</p>
        </body>
        </html>
    `, name, email, phone, message)
}
