package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/currency"

	"go-ordering/models"
)

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, name := range []string{
		"signup", "login", "order-history", "order-detail", "business-orders",
		"businesses", "business", "error400", "error403", "error404", "error500",
	} {
		assert.Contains(t, r.pages, name)
	}
	assert.NotContains(t, r.pages, "layout")
}

func TestRender_OrderDetail(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	userID := primitive.NewObjectID()
	order := models.Order{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		Status:   models.OrderStatusOpen,
		Business: &models.Business{Name: "Trattoria <Roma>"},
		Products: []models.LineItem{
			{Amount: 2, Item: &models.Product{Name: "Pizza", Price: 9.5}},
			{Amount: 1},
		},
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusOK, "order-detail", map[string]any{
		"Viewer":    struct{ UserID, Role string }{UserID: userID.Hex(), Role: models.RoleUser},
		"Messages":  []string{"Order placed"},
		"Order":     order,
		"OpenOrder": true,
		"Total":     models.Money{Amount: decimal.RequireFromString("9.5"), Currency: currency.EUR},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "Trattoria &lt;Roma&gt;")
	assert.Contains(t, body, "EUR 9.50")
	assert.Contains(t, body, "removed product")
	assert.Contains(t, body, "Order placed")
	assert.Contains(t, body, "/orders/"+order.ID.Hex()+"/confirm")
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusOK, "missing", nil)
	require.Error(t, err)
	assert.Zero(t, rec.Body.Len())
}

func TestRender_ExecutionErrorWritesNothing(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	// Order.ID.Hex cannot be evaluated on a string
	err = r.Render(rec, http.StatusOK, "order-detail", map[string]any{"Order": "bogus"})
	require.Error(t, err)
	assert.Zero(t, rec.Body.Len())
}
