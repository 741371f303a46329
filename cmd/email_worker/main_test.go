package main

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to, subject, text, html string
	err                     error
}

func (r *recordingSender) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	r.to, r.subject, r.text, r.html = to, subject, text, html
	return "<id>", r.err
}

func TestHandleRendersTemplateJob(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mg := &recordingSender{}
	body := `{"to":"team@x.com","template":"project_assignment","data":{"ProjectName":"Launch","DeadlineText":"January 1, 2025","BudgetText":"$1,000.00"}}`

	require.Equal(t, ack, handle(context.Background(), logger, mg, []byte(body)))
	assert.Equal(t, "team@x.com", mg.to)
	assert.Equal(t, "You've been assigned to a new project: Launch", mg.subject)
	assert.Contains(t, mg.text, "$1,000.00")
	assert.Contains(t, mg.html, "January 1, 2025")
}

func TestHandleLegacyTemplateName(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mg := &recordingSender{}
	body := `{"to":"team@x.com","template":"assignment","data":{"ProjectName":"Launch"}}`
	assert.Equal(t, ack, handle(context.Background(), logger, mg, []byte(body)))
	assert.Contains(t, mg.subject, "Launch")
}

func TestHandlePreRenderedJob(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mg := &recordingSender{}
	body := `{"to":"a@b.co","subject":"Hi","text":"hello"}`
	assert.Equal(t, ack, handle(context.Background(), logger, mg, []byte(body)))
	assert.Equal(t, "Hi", mg.subject)
}

func TestHandleOutcomes(t *testing.T) {
	logger, hook := test.NewNullLogger()

	assert.Equal(t, drop, handle(context.Background(), logger, &recordingSender{}, []byte(`{not json`)))
	assert.Equal(t, drop, handle(context.Background(), logger, &recordingSender{}, []byte(`{"to":"a@b.co","template":"missing"}`)))
	assert.Equal(t, drop, handle(context.Background(), logger, &recordingSender{}, []byte(`{"to":"a@b.co"}`)))

	failing := &recordingSender{err: errors.New("mailgun 503")}
	assert.Equal(t, retry, handle(context.Background(), logger, failing, []byte(`{"to":"a@b.co","subject":"Hi","text":"x"}`)))
	assert.Equal(t, "send failed", hook.LastEntry().Message)
}
