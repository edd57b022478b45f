package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-ordering/config"
	"go-ordering/controllers"
	"go-ordering/events"
	"go-ordering/flash"
	"go-ordering/logger"
	"go-ordering/port"
	"go-ordering/repository"
	"go-ordering/repository/memstore"
	"go-ordering/routes"
	"go-ordering/service"
	"go-ordering/utils"
	"go-ordering/views"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

type stores struct {
	orders     port.OrderRepository
	users      port.UserRepository
	businesses port.BusinessRepository
	products   port.ProductRepository
}

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Info().Msg("no .env file found, proceeding with environment variables")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// run owns every connection it opens and closes them before returning, so
// main may exit right after.
func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	st, closeStore, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	closers = append(closers, closeStore)

	flashStore, closeFlash, err := openFlashStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	closers = append(closers, closeFlash)

	publisher, closePublisher, err := openPublisher(cfg)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	closers = append(closers, closePublisher)

	renderer, err := views.New()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	emailService := newEmailService(cfg)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	orderService := service.NewOrderService(service.OrderServiceDeps{
		Orders:     st.orders,
		Businesses: st.businesses,
		Products:   st.products,
		Users:      st.users,
		Publisher:  publisher,
		Mailer:     emailService,
		Currency:   cfg.Currency,
	})
	userService := service.NewUserService(st.users, st.businesses, emailService, cfg.BcryptCost)
	catalogService := service.NewCatalogService(st.businesses, st.products)

	// Initialize controllers
	base := &controllers.Base{
		Views:   renderer,
		Flash:   flash.NewMessenger(flashStore, cfg.SecureCookies),
		Timeout: cfg.RequestTimeout,
	}
	router := mux.NewRouter()
	routes.RegisterRoutes(router, tokens, routes.Controllers{
		Users:      controllers.NewUserController(base, userService, tokens, cfg.SecureCookies),
		Orders:     controllers.NewOrderController(base, orderService, catalogService),
		Cart:       controllers.NewCartController(base, orderService),
		Products:   controllers.NewProductController(base, catalogService),
		Businesses: controllers.NewBusinessController(base, catalogService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	// let queued notification emails finish before the stores close
	orderService.Wait()
	userService.Wait()
	log.Info().Msg("server shutdown complete")
	return nil
}

func openStores(ctx context.Context, cfg config.Config) (stores, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		mem := memstore.New()
		return stores{
			orders:     mem.Orders(),
			users:      mem.Users(),
			businesses: mem.Businesses(),
			products:   mem.Products(),
		}, func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := repository.ConnectDB(connectCtx, cfg.MongoURI)
	if err != nil {
		return stores{}, nil, err
	}
	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		disconnect()
		return stores{}, nil, err
	}

	return newMongoStores(db), disconnect, nil
}

func newMongoStores(db *mongo.Database) stores {
	return stores{
		orders:     repository.NewOrder(db),
		users:      repository.NewUser(db),
		businesses: repository.NewBusiness(db),
		products:   repository.NewProduct(db),
	}
}

func openFlashStore(ctx context.Context, cfg config.Config) (flash.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return flash.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}

	return flash.NewRedisStore(rdb), func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}, nil
}

func openPublisher(cfg config.Config) (port.EventPublisher, func(), error) {
	if cfg.RabbitURI == "" {
		return events.NoopPublisher{}, func() {}, nil
	}

	conn, err := amqp.Dial(cfg.RabbitURI)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := events.NewAMQPPublisher(conn, cfg.RabbitQueue)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("amqp channel close failed")
		}
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("amqp connection close failed")
		}
	}, nil
}

func newEmailService(cfg config.Config) *utils.EmailService {
	switch cfg.EmailProvider {
	case config.EmailPostmark:
		return utils.NewPostmarkEmailService(cfg.PostmarkToken, cfg.EmailSender, cfg.PublicBaseURL)
	case config.EmailSendgrid:
		return utils.NewSendgridEmailService(cfg.SendgridKey, cfg.EmailSender, cfg.PublicBaseURL)
	default:
		return utils.NewNoopEmailService()
	}
}
