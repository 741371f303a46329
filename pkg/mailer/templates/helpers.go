package templates

import (
	"time"

	"github.com/oksasatya/project-tracker/config"
	"github.com/oksasatya/project-tracker/pkg/helpers"
)

// Option pattern
type Option func(*EmailData)

func WithDeadline(t time.Time) Option {
	return func(d *EmailData) {
		d.Deadline = t.UTC()
		d.DeadlineText = helpers.FormatDate(t)
	}
}

func WithBudget(amount float64) Option {
	return func(d *EmailData) {
		d.Budget = amount
		d.BudgetText = helpers.FormatUSD(amount)
	}
}

// NewProjectAssignmentData builds the data for the project_assignment template.
func NewProjectAssignmentData(cfg *config.Config, recipient, projectName string, opts ...Option) map[string]any {
	d := EmailData{
		RecipientEmail: recipient,
		ProjectName:    projectName,
	}
	if cfg != nil {
		d.CompanyName = cfg.CompanyName
		d.AppName = cfg.AppName
		d.SupportURL = cfg.SupportURL
		d.DashboardURL = cfg.DashboardURL
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
