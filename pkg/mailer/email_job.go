package mailer

import (
	"fmt"
	"strings"

	"github.com/oksasatya/project-tracker/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template with Data, or Subject with Text/HTML.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "project_assignment"
	Data     map[string]any `json:"data,omitempty"`
}

// Rendered reports whether the job already carries its content.
func (j EmailJob) Rendered() bool {
	return j.Template == "" && j.Subject != "" && (j.Text != "" || j.HTML != "")
}

// Normalize fills recipient fields the templates expect and maps legacy
// template names onto the current ones.
func (j *EmailJob) Normalize() {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	if v, ok := j.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		j.Data["RecipientEmail"] = j.To
	}
	switch strings.ToLower(j.Template) {
	case "assignment", "project_assigned":
		j.Template = templates.ProjectAssignment
	}
}
