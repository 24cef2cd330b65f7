package pdf

import (
	"testing"
	"time"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	svc := NewService(config.StoreConfig{Name: "FreshBasket", Phone: "1800-000-000"})
	driver := "Raj Kumar"

	o := &order.Order{
		ID:              42,
		Subtotal:        decimal.RequireFromString("148.99"),
		DeliveryFee:     decimal.NewFromInt(50),
		TotalAmount:     decimal.RequireFromString("198.99"),
		TipAmount:       decimal.NewFromInt(20),
		ShippingAddress: "12 MG Road, Pune, MH - 411001",
		OrderDate:       time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
		Status:          order.StatusShipped,
		DriverName:      &driver,
		Items: []order.OrderItem{
			{Name: "Apples <Shimla>", Unit: "1 kg", Price: decimal.RequireFromString("118.99"), Quantity: 1, LineTotal: decimal.RequireFromString("118.99")},
			{Name: "Milk", Unit: "500 ml", Price: decimal.NewFromInt(15), Quantity: 2, LineTotal: decimal.NewFromInt(30)},
		},
	}

	html, err := svc.RenderHTML(o)
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "Receipt FB-000042")
	assert.Contains(t, body, "March 5, 2024")
	assert.Contains(t, body, "FreshBasket")
	assert.Contains(t, body, "Driver:</strong> Raj Kumar")
	assert.Contains(t, body, "Apples &lt;Shimla&gt;")
	assert.Contains(t, body, "50.00")
	assert.Contains(t, body, "Driver tip")
	assert.Contains(t, body, "198.99")
}

func TestRenderHTMLWithoutDriverOrTip(t *testing.T) {
	svc := NewService(config.StoreConfig{Name: "FreshBasket"})

	html, err := svc.RenderHTML(&order.Order{
		ID:          7,
		Subtotal:    decimal.NewFromInt(250),
		DeliveryFee: decimal.Zero,
		TotalAmount: decimal.NewFromInt(250),
		Status:      order.StatusProcessing,
	})
	require.NoError(t, err)

	body := string(html)
	assert.NotContains(t, body, "Driver:")
	assert.NotContains(t, body, "Driver tip")
	assert.Contains(t, body, "0.00")
}
