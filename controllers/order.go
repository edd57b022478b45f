package controllers

import (
	"net/http"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/service"
)

// OrderController handles order-related requests
type OrderController struct {
	*Base
	Orders  *service.OrderService
	Catalog *service.CatalogService
}

// NewOrderController creates a new OrderController
func NewOrderController(base *Base, orders *service.OrderService, catalog *service.CatalogService) *OrderController {
	return &OrderController{Base: base, Orders: orders, Catalog: catalog}
}

// ListOrders renders the caller's open carts and past orders
func (oc *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := viewerID(r)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()

	lists, err := oc.Orders.ListOrders(ctx, userID)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}

	oc.render(w, r, http.StatusOK, "order-history", Page{
		"Open":     lists.Open,
		"Closed":   lists.Closed,
		"Messages": oc.popFlash(r, flashSuccess),
	})
}

// Details renders one order with its total
func (oc *OrderController) Details(w http.ResponseWriter, r *http.Request) {
	userID, err := viewerID(r)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()

	detail, err := oc.Orders.OrderDetail(ctx, userID, orderID)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}

	oc.render(w, r, http.StatusOK, "order-detail", Page{
		"Order":     detail.Order,
		"OpenOrder": detail.OpenOrder,
		"Total":     detail.Total,
		"Messages":  oc.popFlash(r, flashClosed),
	})
}

// Confirm sends an open order to the business
func (oc *OrderController) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, err := viewerID(r)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()

	if _, err := oc.Orders.ConfirmOrder(ctx, userID, orderID); err != nil {
		oc.RespondError(w, r, err)
		return
	}

	oc.addFlash(w, r, flashClosed, "Your order has been sent to the restaurant!")
	http.Redirect(w, r, "/orders/"+orderID.Hex()+"/details", http.StatusSeeOther)
}

// Delivered marks an order of one of the caller's businesses as delivered
func (oc *OrderController) Delivered(w http.ResponseWriter, r *http.Request) {
	ownerID, err := viewerID(r)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()

	if err := oc.Orders.MarkDelivered(ctx, ownerID, orderID); err != nil {
		oc.RespondError(w, r, err)
		return
	}

	oc.addFlash(w, r, flashDeliver, "Your order was delivered")
	http.Redirect(w, r, "/business/orders", http.StatusSeeOther)
}

// BusinessOrders renders the orders received by the caller's businesses
func (oc *OrderController) BusinessOrders(w http.ResponseWriter, r *http.Request) {
	ownerID, err := viewerID(r)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}

	var statuses []models.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ToOrderStatus(raw)
		if err != nil {
			oc.RespondError(w, r, apperrors.Validation("status %q is not valid", raw))
			return
		}
		statuses = append(statuses, status)
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()

	orders, err := oc.Orders.BusinessOrders(ctx, ownerID, statuses...)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}
	businesses, err := oc.Catalog.OwnedBusinesses(ctx, ownerID)
	if err != nil {
		oc.RespondError(w, r, err)
		return
	}

	oc.render(w, r, http.StatusOK, "business-orders", Page{
		"Orders":     orders,
		"Businesses": businesses,
		"Messages":   append(oc.popFlash(r, flashDeliver), oc.popFlash(r, flashSuccess)...),
	})
}
