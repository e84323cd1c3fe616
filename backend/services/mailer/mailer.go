package mailer

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/models"
)

// Mailer sends transactional mail over SMTP. With no SMTP host configured it
// degrades to logging, so local development needs no mail server.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	inbox  string
	logger *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Mailer {
	m := &Mailer{
		from:   cfg.SMTPUser,
		inbox:  cfg.LeadsInbox,
		logger: logger,
	}

	if cfg.SMTPHost != "" {
		port, err := strconv.Atoi(cfg.SMTPPort)
		if err != nil {
			port = 587
		}
		m.dialer = gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPassword)
	}

	return m
}

func (m *Mailer) send(to, subject, body string) error {
	if m.dialer == nil {
		m.logger.Info("mailer disabled, skipping email",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

// NotifyLead tells the sales inbox a new enquiry arrived.
func (m *Mailer) NotifyLead(lead *models.EnrollmentLead) error {
	if m.inbox == "" {
		return nil
	}

	body := fmt.Sprintf("New enrollment enquiry\n\nName: %s\nPhone: %s\nEmail: %s\nMessage: %s\n",
		lead.Name, lead.Phone, lead.Email, lead.Message)
	return m.send(m.inbox, "New enrollment lead: "+lead.Name, body)
}

// ConfirmOrder emails the buyer after payment is verified.
func (m *Mailer) ConfirmOrder(email string, order *models.Order) error {
	if email == "" {
		return nil
	}

	body := fmt.Sprintf("Your order %s is confirmed.\n\nTotal: %.2f INR\nItems: %d\n\nThank you for shopping with us.",
		order.Receipt, order.Total, len(order.Items))
	return m.send(email, "Order confirmed: "+order.Receipt, body)
}
