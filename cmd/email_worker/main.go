package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker/config"
	"github.com/oksasatya/project-tracker/pkg/helpers"
	"github.com/oksasatya/project-tracker/pkg/mailer"
	mailtpl "github.com/oksasatya/project-tracker/pkg/mailer/templates"
	"github.com/oksasatya/project-tracker/pkg/metrics"
)

const prefetch = 16

type sender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if !cfg.MailgunConfigured() {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, prefetch)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailReplyTo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			settle(msg, handle(ctx, logger, mg, msg.Body))
		}
	}()

	helpers.LogInfo(logger, "email worker listening", logrus.Fields{"queue": cfg.RabbitMQEmailQueue})
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type outcome int

const (
	ack outcome = iota
	drop
	retry
)

func settle(msg amqp.Delivery, o outcome) {
	switch o {
	case ack:
		_ = msg.Ack(false)
	case drop:
		_ = msg.Nack(false, false)
	case retry:
		_ = msg.Nack(false, true)
	}
}

// handle decodes, renders and sends one job. Malformed or unrenderable jobs
// are dropped; send failures are requeued.
func handle(ctx context.Context, logger *logrus.Logger, mg sender, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		helpers.LogError(logger, "bad message", err, nil)
		metrics.NotificationsTotal.WithLabelValues("worker", "failed").Inc()
		return drop
	}
	job.Normalize()

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			helpers.LogError(logger, "render failed", err, logrus.Fields{"template": job.Template})
			metrics.NotificationsTotal.WithLabelValues("worker", "failed").Inc()
			return drop
		}
		subject, text, html = s, t, h
	}
	if job.To == "" || subject == "" {
		helpers.LogError(logger, "job missing recipient or subject", nil, logrus.Fields{"template": job.Template})
		metrics.NotificationsTotal.WithLabelValues("worker", "failed").Inc()
		return drop
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	id, err := mg.Send(c, job.To, subject, text, html)
	if err != nil {
		helpers.LogError(logger, "send failed", err, logrus.Fields{"to": job.To})
		metrics.NotificationsTotal.WithLabelValues("worker", "retry").Inc()
		return retry
	}
	metrics.NotificationsTotal.WithLabelValues("worker", "sent").Inc()
	helpers.LogInfo(logger, "email sent", logrus.Fields{"to": job.To, "message_id": id})
	return ack
}
