package controllers

import (
	"net/http"

	"go-ordering/service"
)

// CartController fills the open orders that act as shopping carts
type CartController struct {
	*Base
	Orders *service.OrderService
}

func NewCartController(base *Base, orders *service.OrderService) *CartController {
	return &CartController{Base: base, Orders: orders}
}

// AddToCart puts one unit of the posted product into the caller's open order
// for the posted business
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, err := viewerID(r)
	if err != nil {
		cc.RespondError(w, r, err)
		return
	}

	businessID, err := formID(r, "business")
	if err != nil {
		cc.RespondError(w, r, err)
		return
	}
	productID, err := formID(r, "product")
	if err != nil {
		cc.RespondError(w, r, err)
		return
	}

	ctx, cancel := cc.withTimeout(r)
	defer cancel()

	if _, err := cc.Orders.AddProduct(ctx, userID, businessID, productID); err != nil {
		cc.RespondError(w, r, err)
		return
	}

	cc.addFlash(w, r, flashSuccess, "Product added to shopping cart")
	http.Redirect(w, r, "/orders/", http.StatusSeeOther)
}
