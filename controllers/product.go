package controllers

import (
	"net/http"
	"strconv"

	"go-ordering/apperrors"
	"go-ordering/service"
)

// ProductController handles product-related requests
type ProductController struct {
	*Base
	Catalog *service.CatalogService
}

// NewProductController creates a new ProductController
func NewProductController(base *Base, catalog *service.CatalogService) *ProductController {
	return &ProductController{Base: base, Catalog: catalog}
}

// CreateProduct adds a product to one of the caller's businesses
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, err := viewerID(r)
	if err != nil {
		pc.RespondError(w, r, err)
		return
	}
	businessID, err := formID(r, "business")
	if err != nil {
		pc.RespondError(w, r, err)
		return
	}
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		pc.RespondError(w, r, apperrors.Validation("price %q is not a number", r.FormValue("price")))
		return
	}

	ctx, cancel := pc.withTimeout(r)
	defer cancel()

	product, err := pc.Catalog.CreateProduct(ctx, ownerID, businessID, r.FormValue("name"), price)
	if err != nil {
		pc.RespondError(w, r, err)
		return
	}

	pc.addFlash(w, r, flashSuccess, "Product "+product.Name+" created")
	http.Redirect(w, r, "/business/orders", http.StatusSeeOther)
}
