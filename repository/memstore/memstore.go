// Package memstore is an in-memory implementation of the repository ports.
// It is safe for concurrent use and keeps the same invariants as the MongoDB
// repositories, including at most one open order per (user, business).
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go-ordering/apperrors"
	"go-ordering/models"
	"go-ordering/port"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu         sync.RWMutex
	users      map[primitive.ObjectID]models.User
	businesses map[primitive.ObjectID]models.Business
	products   map[primitive.ObjectID]models.Product
	orders     map[primitive.ObjectID]models.Order
}

func New() *Store {
	return &Store{
		users:      make(map[primitive.ObjectID]models.User),
		businesses: make(map[primitive.ObjectID]models.Business),
		products:   make(map[primitive.ObjectID]models.Product),
		orders:     make(map[primitive.ObjectID]models.Order),
	}
}

func (s *Store) Orders() port.OrderRepository        { return orderStore{s} }
func (s *Store) Users() port.UserRepository          { return userStore{s} }
func (s *Store) Businesses() port.BusinessRepository { return businessStore{s} }
func (s *Store) Products() port.ProductRepository    { return productStore{s} }

// copyOrder detaches the line item slice so callers cannot mutate stored state
func copyOrder(o models.Order) models.Order {
	o.Products = slices.Clone(o.Products)
	if o.Products == nil {
		o.Products = []models.LineItem{}
	}
	return o
}

func sortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID.Hex() > orders[j].ID.Hex()
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

type orderStore struct{ s *Store }

func (r orderStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range r.s.orders {
		if o.UserID == userID {
			orders = append(orders, copyOrder(o))
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (r orderStore) FindByBusinesses(_ context.Context, businessIDs []primitive.ObjectID, statuses []models.OrderStatus) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range r.s.orders {
		if slices.Contains(businessIDs, o.BusinessID) && slices.Contains(statuses, o.Status) {
			orders = append(orders, copyOrder(o))
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (r orderStore) FindByID(_ context.Context, orderID primitive.ObjectID) (models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[orderID]
	if !ok {
		return models.Order{}, apperrors.NotFound("order %s not found", orderID.Hex())
	}
	return copyOrder(o), nil
}

func (r orderStore) UpsertOpenOrder(_ context.Context, userID, businessID primitive.ObjectID) (models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.UserID == userID && o.BusinessID == businessID && o.IsOpen() {
			return copyOrder(o), nil
		}
	}

	now := time.Now().UTC()
	o := models.Order{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		BusinessID: businessID,
		Products:   []models.LineItem{},
		Status:     models.OrderStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.s.orders[o.ID] = o
	return copyOrder(o), nil
}

func (r orderStore) AddLineItem(_ context.Context, orderID, productID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[orderID]
	if !ok || !o.IsOpen() {
		return port.ErrOrderNotOpen
	}

	o.Products = slices.Clone(o.Products)
	idx := slices.IndexFunc(o.Products, func(li models.LineItem) bool { return li.ItemID == productID })
	if idx >= 0 {
		o.Products[idx].Amount++
	} else {
		o.Products = append(o.Products, models.LineItem{ItemID: productID, Amount: 1})
	}
	o.UpdatedAt = time.Now().UTC()

	r.s.orders[orderID] = o
	return nil
}

func (r orderStore) UpdateStatus(_ context.Context, orderID primitive.ObjectID, to models.OrderStatus, from ...models.OrderStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[orderID]
	if !ok {
		if len(from) == 0 {
			return false, apperrors.NotFound("order %s not found", orderID.Hex())
		}
		return false, nil
	}
	if len(from) > 0 && !slices.Contains(from, o.Status) {
		return false, nil
	}

	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	r.s.orders[orderID] = o
	return true, nil
}

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, user models.User) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, apperrors.Conflict("email %s is already registered", user.Email)
		}
	}

	user.ID = primitive.NewObjectID()
	r.s.users[user.ID] = user
	return user.ID, nil
}

func (r userStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, apperrors.NotFound("user not found")
}

func (r userStore) FindByID(_ context.Context, userID primitive.ObjectID) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userID]
	if !ok {
		return models.User{}, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (r userStore) Delete(_ context.Context, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.users, userID)
	return nil
}

type businessStore struct{ s *Store }

func (r businessStore) Create(_ context.Context, business models.Business) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	business.ID = primitive.NewObjectID()
	r.s.businesses[business.ID] = business
	return business.ID, nil
}

func (r businessStore) List(_ context.Context) ([]models.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	businesses := make([]models.Business, 0, len(r.s.businesses))
	for _, b := range r.s.businesses {
		businesses = append(businesses, b)
	}
	sort.Slice(businesses, func(i, j int) bool { return businesses[i].Name < businesses[j].Name })
	return businesses, nil
}

func (r businessStore) FindByID(_ context.Context, businessID primitive.ObjectID) (models.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.businesses[businessID]
	if !ok {
		return models.Business{}, apperrors.NotFound("business %s not found", businessID.Hex())
	}
	return b, nil
}

func (r businessStore) FindByIDs(_ context.Context, businessIDs []primitive.ObjectID) ([]models.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	businesses := []models.Business{}
	for _, id := range businessIDs {
		if b, ok := r.s.businesses[id]; ok {
			businesses = append(businesses, b)
		}
	}
	return businesses, nil
}

func (r businessStore) FindByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	businesses := []models.Business{}
	for _, b := range r.s.businesses {
		if b.OwnerID == ownerID {
			businesses = append(businesses, b)
		}
	}
	return businesses, nil
}

type productStore struct{ s *Store }

func (r productStore) Create(_ context.Context, product models.Product) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product.ID = primitive.NewObjectID()
	product.Business = nil
	r.s.products[product.ID] = product
	return product.ID, nil
}

func (r productStore) FindByID(_ context.Context, productID primitive.ObjectID) (models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[productID]
	if !ok {
		return models.Product{}, apperrors.NotFound("product %s not found", productID.Hex())
	}
	return p, nil
}

func (r productStore) FindByIDs(_ context.Context, productIDs []primitive.ObjectID) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := []models.Product{}
	for _, id := range productIDs {
		if p, ok := r.s.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r productStore) FindByBusiness(_ context.Context, businessID primitive.ObjectID) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := []models.Product{}
	for _, p := range r.s.products {
		if p.BusinessID == businessID {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}
