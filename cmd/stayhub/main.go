package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stayhub/internal/app/commands"
	availabilityapp "stayhub/internal/app/handlers/availability"
	bookingapp "stayhub/internal/app/handlers/booking"
	listingsapp "stayhub/internal/app/handlers/listings"
	meapp "stayhub/internal/app/handlers/me"
	"stayhub/internal/app/middleware"
	appoutbox "stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/queries"
	authsvc "stayhub/internal/app/services/auth"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/config"
	mongodb "stayhub/internal/infra/db/mongo"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/obs"
	outboxinfra "stayhub/internal/infra/outbox"
	"stayhub/internal/infra/payments"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev")
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("SEED_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = filepath.Join("data", "seed.json")
	}
	if err := app.loadSeedFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("seed fixtures load failed", "error", err, "path", fixturesPath)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "payments", cfg.PaymentsMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	listings domainlisting.Repository
	users    domainuser.Repository
	hasher   authsvc.PasswordHasher
	currency string
	mongo    *mongodb.Client
	producer *kafka.Producer
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{hasher: security.BcryptHasher{}, currency: cfg.PriceCurrency}

	var (
		listingsRepo domainlisting.Repository
		bookingsRepo domainbooking.Repository
		usersRepo    domainuser.Repository
		uowFactory   uow.UoWFactory
		outboxStore  appoutbox.Outbox
		idStore      middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		app.mongo = client

		listingsRepo = mongodb.NewListingRepository(client.DB)
		bookingsRepo = mongodb.NewBookingRepository(client.DB)
		usersRepo = mongodb.NewUserRepository(client.DB)
		uowFactory = mongodb.Factory{
			ListingsRepo: listingsRepo,
			BookingsRepo: bookingsRepo,
			UsersRepo:    usersRepo,
		}
		store := outboxinfra.NewStore(client.DB)
		outboxStore = store
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return nil, fmt.Errorf("kafka connect: %w", err)
			}
			app.producer = producer
			worker := &outboxinfra.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Logger:      logger,
			}
			go func() {
				if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox worker stopped", "error", err)
				}
			}()
		} else {
			logger.Warn("no kafka brokers configured, outbox events stay unpublished")
		}
	default:
		listingsRepo = memory.NewListingRepository()
		bookingsRepo = memory.NewBookingRepository()
		usersRepo = memory.NewUserRepository()
		uowFactory = memory.Factory{
			ListingsRepo: listingsRepo,
			BookingsRepo: bookingsRepo,
			UsersRepo:    usersRepo,
		}
		outboxStore = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
	}
	app.listings = listingsRepo
	app.users = usersRepo

	var gateway policies.PaymentsPort
	if cfg.PaymentsMode == config.PaymentsHTTP {
		gateway = &payments.HTTPGateway{
			Client:   &http.Client{Timeout: 10 * time.Second},
			Endpoint: cfg.PaymentsURL,
			Logger:   logger,
		}
	} else {
		gateway = payments.NewMemoryGateway()
	}

	// Sessions are short-lived bearer tokens, kept in memory regardless of
	// the storage mode. Restarting the process logs everyone out.
	authService := &authsvc.Service{
		Users:      usersRepo,
		Sessions:   memory.NewSessionStore(),
		Passwords:  app.hasher,
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	var uploader s3.Uploader
	s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("object storage unavailable, photo uploads disabled", "error", err)
		uploader = s3.NoopUploader{}
	} else {
		uploader = s3Client
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory:  uowFactory,
		Payments:    gateway,
		Outbox:      outboxStore,
		Encoder:     encoder,
		Logger:      logger,
		HorizonDays: cfg.BookingHorizonDays,
	})
	commands.RegisterHandler(commandBus, listingsapp.CreateListingCommand{}.Key(), &listingsapp.CreateListingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
		Logger:     logger,
		Currency:   cfg.PriceCurrency,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory:  uowFactory,
		HorizonDays: cfg.BookingHorizonDays,
	})
	queries.RegisterHandler(queryBus, availabilityapp.IsDateBlockedQuery{}.Key(), &availabilityapp.IsDateBlockedHandler{
		UoWFactory:  uowFactory,
		HorizonDays: cfg.BookingHorizonDays,
	})
	queries.RegisterHandler(queryBus, listingsapp.GetOverviewQuery{}.Key(), &listingsapp.GetOverviewHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, listingsapp.SearchCatalogQuery{}.Key(), &listingsapp.SearchCatalogHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, meapp.GuestBookingsQuery{}.Key(), &meapp.GuestBookingsHandler{
		UoWFactory: uowFactory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.handlers = ginserver.Handlers{
		Booking:        ginserver.BookingHandler{Commands: commandBusWithMiddleware},
		Availability:   ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
		Listing:        ginserver.ListingHandler{Queries: queryBusWithMiddleware},
		HostListing:    ginserver.HostListingHandler{Commands: commandBusWithMiddleware, Uploader: uploader},
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Me:             ginserver.MeHandler{Queries: queryBusWithMiddleware},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	return app, nil
}

func (a *application) ready() error {
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return a.mongo.DB.Client().Ping(ctx, nil)
	}
	return nil
}

func (a *application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Close(ctx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
}

// loadSeedFixtures imports demo hosts and listings so a fresh instance has a
// browsable catalog. Rows that already exist or fail validation are skipped.
func (a *application) loadSeedFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("seed fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range seed.Users {
		hash, err := a.hasher.Hash(fx.Password)
		if err != nil {
			logger.Error("fixture password hash failed", "user_id", fx.ID, "error", err)
			continue
		}
		u, err := domainuser.NewUser(domainuser.CreateParams{
			ID:           domainuser.ID(fx.ID),
			Email:        fx.Email,
			Name:         fx.Name,
			PasswordHash: hash,
			AvatarURL:    fx.AvatarURL,
			CreatedAt:    now,
		})
		if err != nil {
			logger.Error("user fixture invalid", "user_id", fx.ID, "error", err)
			continue
		}
		if fx.WalletID != "" {
			u.ConnectWallet(fx.WalletID, now)
		}
		if err := a.users.Save(ctx, u); err != nil {
			logger.Warn("user fixture not stored", "user_id", fx.ID, "error", err)
			continue
		}
		logger.Info("user fixture imported", "user_id", u.ID)
	}

	for _, fx := range seed.Listings {
		currency := fx.Currency
		if currency == "" {
			currency = a.currency
		}
		rate, err := money.New(fx.NightlyRateCents, currency)
		if err != nil {
			logger.Error("listing fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		l, err := domainlisting.NewListing(domainlisting.CreateParams{
			ID:          domainlisting.ListingID(fx.ID),
			Host:        fx.Host,
			Title:       fx.Title,
			Description: fx.Description,
			Type:        domainlisting.ListingType(fx.Type),
			PhotoURL:    fx.PhotoURL,
			Address:     fx.Address,
			City:        fx.City,
			Country:     fx.Country,
			GuestsLimit: fx.GuestsLimit,
			NightlyRate: rate,
			Now:         now,
		})
		if err != nil {
			logger.Error("listing fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := a.listings.Save(ctx, l); err != nil {
			logger.Warn("listing fixture not stored", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", l.ID)
	}
	return nil
}

type seedFile struct {
	Users    []userFixture    `json:"users"`
	Listings []listingFixture `json:"listings"`
}

type userFixture struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url"`
	WalletID  string `json:"wallet_id"`
}

type listingFixture struct {
	ID               string `json:"id"`
	Host             string `json:"host"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Type             string `json:"type"`
	PhotoURL         string `json:"photo_url"`
	Address          string `json:"address"`
	City             string `json:"city"`
	Country          string `json:"country"`
	GuestsLimit      int    `json:"guests_limit"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	Currency         string `json:"currency"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
