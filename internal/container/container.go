package container

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker/config"
	"github.com/oksasatya/project-tracker/internal/application"
	pginfra "github.com/oksasatya/project-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/project-tracker/internal/infrastructure/notifier"
	"github.com/oksasatya/project-tracker/internal/infrastructure/search"
	"github.com/oksasatya/project-tracker/pkg/helpers"
	"github.com/oksasatya/project-tracker/pkg/mailer"
)

// Container holds the process-wide clients. It is built once in main and
// passed to the router; nothing here is global.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Pool   *pgxpool.Pool
	JWT    *helpers.JWTManager

	// Optional; nil when not configured.
	Publisher *helpers.RabbitPublisher
	Mailgun   *mailer.Mailgun
	ES        *elasticsearch.Client
}

// New connects to Postgres and to whichever optional backends cfg enables.
// Optional backends that fail to connect are logged and left nil.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Pool:   pool,
		JWT:    helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
	}

	if !cfg.MailConfigured() {
		logger.WithField("transport", cfg.MailTransport).Warn("mail delivery not configured, assignment emails will only be logged")
	} else {
		switch cfg.MailTransport {
		case config.MailTransportQueue:
			pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
			if err != nil {
				helpers.LogWarn(logger, "rabbitmq unavailable, assignment emails will only be logged", err, logrus.Fields{"queue": cfg.RabbitMQEmailQueue})
			} else {
				c.Publisher = pub
			}
		case config.MailTransportMailgun:
			c.Mailgun = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailReplyTo)
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogWarn(logger, "elasticsearch client init failed, search uses postgres", err, nil)
		} else {
			c.ES = es
		}
	}
	return c, nil
}

// Notifier returns the assignment notifier for the configured transport.
func (c *Container) Notifier() notifier.Notifier {
	var (
		pub    notifier.Publisher
		sender notifier.Sender
	)
	if c.Publisher != nil {
		pub = c.Publisher
	}
	if c.Mailgun != nil {
		sender = c.Mailgun
	}
	return notifier.New(c.Config, c.Logger, pub, sender)
}

// ProjectIndex returns the Elasticsearch index, or nil when search runs on Postgres.
func (c *Container) ProjectIndex() application.ProjectIndex {
	if c.ES == nil {
		return nil
	}
	return search.NewProjectIndex(c.ES, c.Config.ESProjectsIndex)
}

func (c *Container) Close() {
	c.Publisher.Close()
	if c.Pool != nil {
		c.Pool.Close()
	}
}
