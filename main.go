package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"ktvadmin/auth"
	"ktvadmin/booking"
	"ktvadmin/config"
	"ktvadmin/customers"
	"ktvadmin/dashboard"
	"ktvadmin/db"
	"ktvadmin/filemgr"
	"ktvadmin/live"
	"ktvadmin/logger"
	"ktvadmin/memberships"
	"ktvadmin/middleware"
	"ktvadmin/mq"
	"ktvadmin/orders"
	"ktvadmin/products"
	"ktvadmin/ratelim"
	"ktvadmin/rdx"
	"ktvadmin/receipts"
	"ktvadmin/rooms"
	"ktvadmin/routes"
)

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found; using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.NewLogger(cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := db.Connect(startCtx, cfg.Mongo)
	if err != nil {
		cancel()
		log.Fatal("DATABASE", err.Error())
	}
	log.Info("DATABASE", fmt.Sprintf("Connected to %s", cfg.Mongo.Database))
	if err := store.EnsureIndexes(startCtx); err != nil {
		log.Warn("DATABASE", err.Error())
	}

	hub := live.NewHub()
	go hub.Run()

	events, err := buildEmitter(startCtx, cfg, hub, log)
	cancel()
	if err != nil {
		log.Fatal("EVENTS", err.Error())
	}

	handler := buildHandler(cfg, store, hub, events, log)
	server := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Info("SERVER", "Stopping live hub")
		hub.Stop()
	})

	go func() {
		log.Info("SERVER", fmt.Sprintf("Listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("SERVER", fmt.Sprintf("ListenAndServe: %v", err))
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("SERVER", "Shutdown signal received; shutting down gracefully")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("SERVER", fmt.Sprintf("Graceful shutdown failed: %v", err))
	}
	if err := events.Close(); err != nil {
		log.Warn("EVENTS", fmt.Sprintf("close: %v", err))
	}
	if err := store.Disconnect(ctx); err != nil {
		log.Warn("DATABASE", fmt.Sprintf("disconnect: %v", err))
	}
	log.Info("SERVER", "Server stopped cleanly")
}

// buildEmitter always feeds the live hub and adds the configured broker.
func buildEmitter(ctx context.Context, cfg *config.Config, hub *live.Hub, log *logger.Logger) (mq.Emitter, error) {
	fanout := mq.Fanout{hub}
	switch cfg.Events.Backend {
	case "redis":
		client, err := rdx.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		fanout = append(fanout, mq.NewRedisEmitter(client, cfg.Events.Channel))
		log.Info("EVENTS", fmt.Sprintf("Publishing to redis channel %s", cfg.Events.Channel))
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 {
			return nil, errors.New("EVENTS_BACKEND=kafka needs KAFKA_BROKERS")
		}
		fanout = append(fanout, mq.NewKafkaEmitter(cfg.Kafka.Brokers, cfg.Kafka.Topic, log))
		log.Info("EVENTS", fmt.Sprintf("Publishing to kafka topic %s", cfg.Kafka.Topic))
	case "", "none":
	default:
		return nil, fmt.Errorf("unknown EVENTS_BACKEND %q", cfg.Events.Backend)
	}
	return fanout, nil
}

func buildHandler(cfg *config.Config, store *db.Store, hub *live.Hub, events mq.Emitter, log *logger.Logger) http.Handler {
	timeout := cfg.Server.RequestTimeout
	printer := receipts.Renderer{Secret: []byte(cfg.ReceiptSecret)}

	customerStore := customers.NewMongoStore(store.Customers)
	roomStore := rooms.NewMongoStore(store.Rooms)
	productStore := products.NewMongoStore(store.Products)
	membershipStore := memberships.NewMongoStore(store.Memberships)
	images := filemgr.NewImageStore(cfg.Uploads.Dir, "/static/uploads")

	bookingSvc := booking.NewService(booking.NewMongoStore(store.Bookings), roomStore, events, log)
	orderSvc := orders.NewService(orders.NewMongoStore(store.Orders), customerStore, membershipStore, productStore, events, log)
	membershipSvc := memberships.NewService(membershipStore, customerStore, events, log)

	h := routes.Handlers{
		Bookings:    booking.NewHandler(bookingSvc, log, printer, timeout),
		Customers:   customers.NewHandler(customers.NewService(customerStore, log), log, timeout),
		Rooms:       rooms.NewHandler(rooms.NewService(roomStore, events, log), log, timeout),
		Products:    products.NewHandler(products.NewService(productStore, images, events, log), log, timeout),
		Orders:      orders.NewHandler(orderSvc, log, printer, timeout),
		Memberships: memberships.NewHandler(membershipSvc, log, timeout),
		Dashboard:   dashboard.NewHandler(dashboard.NewService(dashboard.NewMongoSource(store), log), log, timeout),
		Hub:         hub,
		DB:          store,
		Log:         log,
	}
	opt := routes.Options{
		RateLimiter: ratelim.NewRateLimiter(cfg.RateLim),
		UploadDir:   cfg.Uploads.Dir,
	}
	if cfg.AuthEnabled() {
		h.Auth = auth.NewHandler(cfg.Auth, log)
		opt.JWTSecret = []byte(cfg.Auth.JWTSecret)
		log.Info("AUTH", "Bearer tokens required on data routes")
	}

	router := httprouter.New()
	routes.RoutesWrapper(router, h, opt)

	// CORS → security headers → logging → recover → router
	var handler http.Handler = middleware.Recover(log, router)
	handler = middleware.RequestLogger(log, handler)
	if cfg.Server.SecurityHeaders {
		handler = middleware.SecurityHeaders(handler)
	}
	return cors.New(corsOptions(cfg.CORSOrig)).Handler(handler)
}

// Credentials are only allowed for an explicit origin list, never for "*".
func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: len(origins) > 0 && !slices.Contains(origins, "*"),
	}
}
