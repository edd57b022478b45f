package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-ordering/models"
	"go-ordering/repository/memstore"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/currency"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []models.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OrderEvent(nil), p.events...)
}

type recordingMailer struct {
	mu        sync.Mutex
	welcome   []string
	confirmed []string
	delivered []string
}

func (m *recordingMailer) SendWelcomeEmail(user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, user.Email)
	return nil
}

func (m *recordingMailer) SendOrderConfirmedEmail(owner models.User, _ models.Business, _ models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, owner.Email)
	return nil
}

func (m *recordingMailer) SendOrderDeliveredEmail(customer models.User, _ models.Business, _ models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = append(m.delivered, customer.Email)
	return errors.New("mail provider down")
}

type fixture struct {
	store     *memstore.Store
	svc       *OrderService
	publisher *recordingPublisher
	mailer    *recordingMailer

	customer models.User
	owner    models.User
	business models.Business
	pizza    models.Product
	salad    models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:     memstore.New(),
		publisher: &recordingPublisher{},
		mailer:    &recordingMailer{},
	}

	f.svc = NewOrderService(OrderServiceDeps{
		Orders:     f.store.Orders(),
		Businesses: f.store.Businesses(),
		Products:   f.store.Products(),
		Users:      f.store.Users(),
		Publisher:  f.publisher,
		Mailer:     f.mailer,
		Currency:   currency.EUR,
	})
	t.Cleanup(f.svc.Wait)

	var err error
	f.customer = models.User{FirstName: gofakeit.FirstName(), Email: gofakeit.Email(), Role: models.RoleUser}
	f.customer.ID, err = f.store.Users().Create(ctx, f.customer)
	require.NoError(t, err)

	f.owner = models.User{FirstName: gofakeit.FirstName(), Email: gofakeit.Email(), Role: models.RoleBusiness}
	f.owner.ID, err = f.store.Users().Create(ctx, f.owner)
	require.NoError(t, err)

	f.business = models.Business{Name: gofakeit.Company(), OwnerID: f.owner.ID}
	f.business.ID, err = f.store.Businesses().Create(ctx, f.business)
	require.NoError(t, err)

	f.pizza = models.Product{Name: "Pizza", Price: 9.5, BusinessID: f.business.ID}
	f.pizza.ID, err = f.store.Products().Create(ctx, f.pizza)
	require.NoError(t, err)

	f.salad = models.Product{Name: "Salad", Price: 4.25, BusinessID: f.business.ID}
	f.salad.ID, err = f.store.Products().Create(ctx, f.salad)
	require.NoError(t, err)

	return f
}

func (f *fixture) addBusiness(t *testing.T, ownerID primitive.ObjectID) (models.Business, models.Product) {
	t.Helper()
	ctx := context.Background()

	b := models.Business{Name: gofakeit.Company(), OwnerID: ownerID}
	var err error
	b.ID, err = f.store.Businesses().Create(ctx, b)
	require.NoError(t, err)

	p := models.Product{Name: gofakeit.Noun(), Price: 2, BusinessID: b.ID}
	p.ID, err = f.store.Products().Create(ctx, p)
	require.NoError(t, err)

	return b, p
}
