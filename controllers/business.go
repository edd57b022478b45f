package controllers

import (
	"net/http"

	"go-ordering/service"
)

// BusinessController lets visitors browse businesses and their products
type BusinessController struct {
	*Base
	Catalog *service.CatalogService
}

func NewBusinessController(base *Base, catalog *service.CatalogService) *BusinessController {
	return &BusinessController{Base: base, Catalog: catalog}
}

func (bc *BusinessController) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := bc.withTimeout(r)
	defer cancel()

	businesses, err := bc.Catalog.ListBusinesses(ctx)
	if err != nil {
		bc.RespondError(w, r, err)
		return
	}

	bc.render(w, r, http.StatusOK, "businesses", Page{"Businesses": businesses})
}

func (bc *BusinessController) ShowBusiness(w http.ResponseWriter, r *http.Request) {
	businessID, err := pathID(r, "id")
	if err != nil {
		bc.RespondError(w, r, err)
		return
	}

	ctx, cancel := bc.withTimeout(r)
	defer cancel()

	business, products, err := bc.Catalog.Business(ctx, businessID)
	if err != nil {
		bc.RespondError(w, r, err)
		return
	}

	bc.render(w, r, http.StatusOK, "business", Page{"Business": business, "Products": products})
}
