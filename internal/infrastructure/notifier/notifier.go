package notifier

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker/config"
	"github.com/oksasatya/project-tracker/internal/domain/entity"
	"github.com/oksasatya/project-tracker/pkg/mailer"
	"github.com/oksasatya/project-tracker/pkg/mailer/templates"
	"github.com/oksasatya/project-tracker/pkg/metrics"
)

// Notifier delivers project assignment notices.
type Notifier interface {
	NotifyAssignment(ctx context.Context, address, projectName, deadline string, budget float64) error
}

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Sender delivers a rendered email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

// New picks a transport from cfg. When mail is disabled, or the selected
// transport has no backing client, assignments are only logged.
func New(cfg *config.Config, logger *logrus.Logger, pub Publisher, sender Sender) Notifier {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if cfg.MailSendEnabled {
		switch cfg.MailTransport {
		case config.MailTransportQueue:
			if pub != nil {
				return &QueueNotifier{Publisher: pub, Config: cfg, Logger: logger}
			}
		case config.MailTransportMailgun:
			if sender != nil {
				return &MailgunNotifier{Sender: sender, Config: cfg, Logger: logger}
			}
		}
	}
	return &LogNotifier{Logger: logger}
}

// LogNotifier records the notice without sending anything.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) NotifyAssignment(ctx context.Context, address, projectName, deadline string, budget float64) error {
	n.Logger.WithFields(logrus.Fields{
		"to":       address,
		"project":  projectName,
		"deadline": deadline,
		"budget":   budget,
	}).Warn("assignment email would be sent (mail delivery disabled)")
	metrics.NotificationsTotal.WithLabelValues(config.MailTransportLog, "skipped").Inc()
	return nil
}

// QueueNotifier hands the notice to the email worker over RabbitMQ.
type QueueNotifier struct {
	Publisher Publisher
	Config    *config.Config
	Logger    *logrus.Logger
}

func (n *QueueNotifier) NotifyAssignment(ctx context.Context, address, projectName, deadline string, budget float64) error {
	data, err := assignmentData(n.Config, address, projectName, deadline, budget)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(config.MailTransportQueue, "failed").Inc()
		return err
	}
	job := mailer.EmailJob{To: address, Template: templates.ProjectAssignment, Data: data}
	if err := n.Publisher.PublishJSON(ctx, job); err != nil {
		metrics.NotificationsTotal.WithLabelValues(config.MailTransportQueue, "failed").Inc()
		return err
	}
	metrics.NotificationsTotal.WithLabelValues(config.MailTransportQueue, "sent").Inc()
	n.Logger.WithField("to", address).Debug("assignment email queued")
	return nil
}

// MailgunNotifier renders and sends the notice in-process.
type MailgunNotifier struct {
	Sender Sender
	Config *config.Config
	Logger *logrus.Logger
}

func (n *MailgunNotifier) NotifyAssignment(ctx context.Context, address, projectName, deadline string, budget float64) error {
	data, err := assignmentData(n.Config, address, projectName, deadline, budget)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(config.MailTransportMailgun, "failed").Inc()
		return err
	}
	subject, text, html, err := templates.Render(templates.ProjectAssignment, data)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(config.MailTransportMailgun, "failed").Inc()
		return err
	}
	id, err := n.Sender.Send(ctx, address, subject, text, html)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(config.MailTransportMailgun, "failed").Inc()
		return err
	}
	metrics.NotificationsTotal.WithLabelValues(config.MailTransportMailgun, "sent").Inc()
	n.Logger.WithFields(logrus.Fields{"to": address, "message_id": id}).Info("assignment email sent")
	return nil
}

var errNoRecipient = errors.New("notifier: empty recipient")

func assignmentData(cfg *config.Config, address, projectName, deadline string, budget float64) (map[string]any, error) {
	if address == "" {
		return nil, errNoRecipient
	}
	d, err := entity.ParseDeadline(deadline)
	if err != nil {
		return nil, err
	}
	return templates.NewProjectAssignmentData(cfg, address, projectName,
		templates.WithDeadline(d),
		templates.WithBudget(budget),
	), nil
}
