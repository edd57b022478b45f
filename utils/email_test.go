package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go-ordering/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sentEmail struct {
	from, to, subject, body string
}

type recordingSender struct {
	sent []sentEmail
	err  error
}

func (r *recordingSender) send(from, toEmail, subject, htmlContent string) error {
	r.sent = append(r.sent, sentEmail{from, toEmail, subject, htmlContent})
	return r.err
}

func TestEmailService_OrderConfirmed(t *testing.T) {
	rec := &recordingSender{}
	es := &EmailService{sender: rec, from: "orders@shop.test", baseURL: "http://shop.test"}

	owner := models.User{FirstName: "<Bo>", Email: "bo@shop.test"}
	business := models.Business{Name: "Pizza & Co"}
	order := models.Order{ID: primitive.NewObjectID(), Products: make([]models.LineItem, 2)}

	require.NoError(t, es.SendOrderConfirmedEmail(owner, business, order))
	require.Len(t, rec.sent, 1)

	got := rec.sent[0]
	assert.Equal(t, "orders@shop.test", got.from)
	assert.Equal(t, "bo@shop.test", got.to)
	assert.Equal(t, "New order for Pizza & Co", got.subject)
	assert.Contains(t, got.body, "&lt;Bo&gt;")
	assert.Contains(t, got.body, "Pizza &amp; Co")
	assert.Contains(t, got.body, order.ID.Hex())
	assert.Contains(t, got.body, "2 product(s)")
}

func TestEmailService_WrapsProviderError(t *testing.T) {
	rec := &recordingSender{err: errors.New("503")}
	es := &EmailService{sender: rec, baseURL: "http://shop.test"}

	err := es.SendWelcomeEmail(models.User{FirstName: "Ana", Email: "ana@shop.test"})
	assert.ErrorContains(t, err, "failed to send email: 503")
}

func TestNoopEmailService(t *testing.T) {
	buf := captureLogs(t)

	es := NewNoopEmailService()
	assert.NoError(t, es.SendOrderDeliveredEmail(models.User{Email: "x@y.z"}, models.Business{}, models.Order{}))

	assert.Contains(t, buf.String(), "email not sent, no provider configured")
	assert.NotContains(t, buf.String(), `"message":"email sent"`)
}

func TestEmailService_LogsDelivery(t *testing.T) {
	buf := captureLogs(t)

	es := &EmailService{sender: &recordingSender{}, baseURL: "http://shop.test"}
	require.NoError(t, es.SendWelcomeEmail(models.User{FirstName: "Ana", Email: "ana@shop.test"}))

	assert.Equal(t, 1, strings.Count(buf.String(), `"message":"email sent"`))
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous, level := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(level)
	})
	return &buf
}
