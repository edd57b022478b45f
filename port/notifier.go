package port

import (
	"context"

	"go-ordering/models"
)

// EventPublisher delivers order status events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

type Mailer interface {
	SendWelcomeEmail(user models.User) error
	// SendOrderConfirmedEmail tells the business owner a new order is waiting
	SendOrderConfirmedEmail(owner models.User, business models.Business, order models.Order) error
	// SendOrderDeliveredEmail tells the customer the order was delivered
	SendOrderDeliveredEmail(customer models.User, business models.Business, order models.Order) error
}
