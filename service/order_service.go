package service

import (
	"context"
	"errors"
	"fmt"

	"go-ordering/apperrors"
	"go-ordering/events"
	"go-ordering/models"
	"go-ordering/port"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/currency"
)

// addAttempts bounds retries when the open order is confirmed between the
// upsert and the line item update
const addAttempts = 2

var ErrEmptyOrder = apperrors.Validation("order has no products")

type OrderService struct {
	orders     port.OrderRepository
	businesses port.BusinessRepository
	products   port.ProductRepository
	users      port.UserRepository
	publisher  port.EventPublisher
	mailer     port.Mailer
	currency   currency.Unit

	async background
}

type OrderServiceDeps struct {
	Orders     port.OrderRepository
	Businesses port.BusinessRepository
	Products   port.ProductRepository
	Users      port.UserRepository
	Publisher  port.EventPublisher
	Mailer     port.Mailer
	Currency   currency.Unit
}

func NewOrderService(deps OrderServiceDeps) *OrderService {
	return &OrderService{
		orders:     deps.Orders,
		businesses: deps.Businesses,
		products:   deps.Products,
		users:      deps.Users,
		publisher:  deps.Publisher,
		mailer:     deps.Mailer,
		currency:   deps.Currency,
	}
}

// OrderLists splits a user's orders into the open carts and everything else.
// Both slices are non-nil.
type OrderLists struct {
	Open   []models.Order
	Closed []models.Order
}

type OrderDetail struct {
	Order     models.Order
	OpenOrder bool
	Total     models.Money
}

func (s *OrderService) ListOrders(ctx context.Context, userID primitive.ObjectID) (OrderLists, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return OrderLists{}, fmt.Errorf("orders.FindByUser: %w", err)
	}

	if err := s.populate(ctx, orders); err != nil {
		return OrderLists{}, fmt.Errorf("populate: %w", err)
	}

	isOpen := func(o models.Order, _ int) bool { return o.IsOpen() }

	return OrderLists{
		Open:   lo.Filter(orders, isOpen),
		Closed: lo.Reject(orders, isOpen),
	}, nil
}

// OrderDetail returns one order with its computed total. The customer and the
// owner of the order's business may read it.
func (s *OrderService) OrderDetail(ctx context.Context, callerID, orderID primitive.ObjectID) (OrderDetail, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderDetail{}, fmt.Errorf("orders.FindByID: %w", err)
	}

	if order.UserID != callerID {
		if err := s.requireBusinessOwner(ctx, callerID, order); err != nil {
			return OrderDetail{}, err
		}
	}

	orders := []models.Order{order}
	if err := s.populate(ctx, orders); err != nil {
		return OrderDetail{}, fmt.Errorf("populate: %w", err)
	}
	order = orders[0]

	total, err := OrderTotal(order, s.currency)
	if err != nil {
		return OrderDetail{}, err
	}

	return OrderDetail{
		Order:     order,
		OpenOrder: order.IsOpen(),
		Total:     total,
	}, nil
}

// OrderTotal sums the unit price of every line item. The amount of a line
// item is not multiplied in. Line items must be populated.
func OrderTotal(order models.Order, unit currency.Unit) (models.Money, error) {
	if len(order.Products) == 0 {
		return models.Money{}, ErrEmptyOrder
	}

	for _, li := range order.Products {
		if li.Item == nil {
			return models.Money{}, apperrors.NotFound("product %s of order %s no longer exists", li.ItemID.Hex(), order.ID.Hex())
		}
	}

	sum := lo.Reduce(order.Products, func(acc decimal.Decimal, li models.LineItem, _ int) decimal.Decimal {
		return acc.Add(decimal.NewFromFloat(li.Item.Price))
	}, decimal.Zero)

	return models.Money{Amount: sum, Currency: unit}, nil
}

// ConfirmOrder moves an open order to pending. Confirming an order that is
// already past open succeeds without changing it; changed reports which.
func (s *OrderService) ConfirmOrder(ctx context.Context, userID, orderID primitive.ObjectID) (changed bool, err error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("orders.FindByID: %w", err)
	}

	if order.UserID != userID {
		return false, apperrors.Forbidden("order %s belongs to another user", orderID.Hex())
	}

	if order.IsOpen() && len(order.Products) == 0 {
		return false, ErrEmptyOrder
	}

	changed, err = s.orders.UpdateStatus(ctx, orderID, models.OrderStatusPending, models.OrderStatusOpen)
	if err != nil {
		return false, fmt.Errorf("orders.UpdateStatus: %w", err)
	}
	if !changed {
		return false, nil
	}

	order.Status = models.OrderStatusPending
	s.publish(ctx, events.NewEvent(models.EventOrderConfirmed, order, order.Status))

	s.async.Go("order confirmed email", func(ctx context.Context) error {
		business, err := s.businesses.FindByID(ctx, order.BusinessID)
		if err != nil {
			return fmt.Errorf("businesses.FindByID: %w", err)
		}
		owner, err := s.users.FindByID(ctx, business.OwnerID)
		if err != nil {
			return fmt.Errorf("users.FindByID: %w", err)
		}
		return s.mailer.SendOrderConfirmedEmail(owner, business, order)
	})

	return true, nil
}

// AddProduct puts one unit of productID into the caller's open order for
// businessID, creating the order when none is open. Repeated adds of the same
// product increment its amount.
func (s *OrderService) AddProduct(ctx context.Context, userID, businessID, productID primitive.ObjectID) (models.Order, error) {
	product, err := s.products.FindByID(ctx, productID)
	if apperrors.IsNotFound(err) {
		return models.Order{}, apperrors.Validation("product %s does not exist", productID.Hex())
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("products.FindByID: %w", err)
	}

	if product.BusinessID != businessID {
		return models.Order{}, apperrors.Validation("product %s is not sold by business %s", productID.Hex(), businessID.Hex())
	}

	for attempt := 0; attempt < addAttempts; attempt++ {
		order, err := s.orders.UpsertOpenOrder(ctx, userID, businessID)
		if err != nil {
			return models.Order{}, fmt.Errorf("orders.UpsertOpenOrder: %w", err)
		}

		err = s.orders.AddLineItem(ctx, order.ID, productID)
		if errors.Is(err, port.ErrOrderNotOpen) {
			continue
		}
		if err != nil {
			return models.Order{}, fmt.Errorf("orders.AddLineItem: %w", err)
		}

		return order, nil
	}

	return models.Order{}, port.ErrOrderNotOpen
}

// MarkDelivered sets the order to delivered whatever its current status.
// Only the owner of the order's business may do so.
func (s *OrderService) MarkDelivered(ctx context.Context, ownerID, orderID primitive.ObjectID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("orders.FindByID: %w", err)
	}

	if err := s.requireBusinessOwner(ctx, ownerID, order); err != nil {
		return err
	}

	if _, err := s.orders.UpdateStatus(ctx, orderID, models.OrderStatusDelivered); err != nil {
		return fmt.Errorf("orders.UpdateStatus: %w", err)
	}

	order.Status = models.OrderStatusDelivered
	s.publish(ctx, events.NewEvent(models.EventOrderDelivered, order, order.Status))

	s.async.Go("order delivered email", func(ctx context.Context) error {
		business, err := s.businesses.FindByID(ctx, order.BusinessID)
		if err != nil {
			return fmt.Errorf("businesses.FindByID: %w", err)
		}
		customer, err := s.users.FindByID(ctx, order.UserID)
		if err != nil {
			return fmt.Errorf("users.FindByID: %w", err)
		}
		return s.mailer.SendOrderDeliveredEmail(customer, business, order)
	})

	return nil
}

// BusinessOrders lists the orders of every business owned by ownerID with one
// of the given statuses, confirmed and delivered ones when none are given.
// Open carts are not visible to the business.
func (s *OrderService) BusinessOrders(ctx context.Context, ownerID primitive.ObjectID, statuses ...models.OrderStatus) ([]models.Order, error) {
	if len(statuses) == 0 {
		statuses = []models.OrderStatus{models.OrderStatusPending, models.OrderStatusDelivered}
	}
	if lo.Contains(statuses, models.OrderStatusOpen) {
		return nil, apperrors.Validation("open orders are not visible to the business")
	}

	businesses, err := s.businesses.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("businesses.FindByOwner: %w", err)
	}

	ids := lo.Map(businesses, func(b models.Business, _ int) primitive.ObjectID { return b.ID })

	orders, err := s.orders.FindByBusinesses(ctx, ids, statuses)
	if err != nil {
		return nil, fmt.Errorf("orders.FindByBusinesses: %w", err)
	}

	if err := s.populate(ctx, orders); err != nil {
		return nil, fmt.Errorf("populate: %w", err)
	}

	return orders, nil
}

// Wait blocks until pending notification emails are sent.
func (s *OrderService) Wait() {
	s.async.Wait()
}

func (s *OrderService) requireBusinessOwner(ctx context.Context, callerID primitive.ObjectID, order models.Order) error {
	business, err := s.businesses.FindByID(ctx, order.BusinessID)
	if err != nil {
		return fmt.Errorf("businesses.FindByID: %w", err)
	}

	if business.OwnerID != callerID {
		return apperrors.Forbidden("order %s belongs to another business", order.ID.Hex())
	}

	return nil
}

func (s *OrderService) publish(ctx context.Context, event models.OrderEvent) {
	// the status change is already stored, a lost event must not fail the request
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("type", event.Type).
			Str("order_id", event.OrderID.Hex()).
			Msg("failed to publish order event")
	}
}

// populate hydrates the business of each order, and the product and the
// product's business of each line item. References that no longer resolve
// are left nil.
func (s *OrderService) populate(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	productIDs := lo.Uniq(lo.FlatMap(orders, func(o models.Order, _ int) []primitive.ObjectID {
		return lo.Map(o.Products, func(li models.LineItem, _ int) primitive.ObjectID { return li.ItemID })
	}))

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("products.FindByIDs: %w", err)
	}

	businessIDs := lo.Uniq(append(
		lo.Map(orders, func(o models.Order, _ int) primitive.ObjectID { return o.BusinessID }),
		lo.Map(products, func(p models.Product, _ int) primitive.ObjectID { return p.BusinessID })...,
	))

	businesses, err := s.businesses.FindByIDs(ctx, businessIDs)
	if err != nil {
		return fmt.Errorf("businesses.FindByIDs: %w", err)
	}

	businessByID := lo.KeyBy(businesses, func(b models.Business) primitive.ObjectID { return b.ID })
	productByID := lo.KeyBy(products, func(p models.Product) primitive.ObjectID { return p.ID })

	for i := range orders {
		if b, ok := businessByID[orders[i].BusinessID]; ok {
			orders[i].Business = &b
		}

		for j := range orders[i].Products {
			p, ok := productByID[orders[i].Products[j].ItemID]
			if !ok {
				continue
			}
			if b, ok := businessByID[p.BusinessID]; ok {
				p.Business = &b
			}
			orders[i].Products[j].Item = &p
		}
	}

	return nil
}
