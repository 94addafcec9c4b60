package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"team-project/dashboard/config"
	"team-project/dashboard/handlers"
	"team-project/dashboard/logging"
	"team-project/dashboard/repositories"
	"team-project/dashboard/services"
	"team-project/dashboard/session"
	"team-project/dashboard/utils"
	"team-project/dashboard/views"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}

	if err := logging.InitLogger(logging.Options{
		SystemName: "team-dashboard",
		File:       cfg.LogFile,
		Level:      cfg.LogLevel,
		Console:    true,
	}); err != nil {
		logging.Logger.Fatalf("Event ID: LOGGER_INIT_FAILED, Description: %v", err)
	}
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Team Dashboard...")

	httpClient := utils.NewHTTPClient(cfg.BackendTimeout)
	backendBreaker := utils.NewCircuitBreaker("backend-api")
	backend := repositories.NewBackendRepository(cfg.BackendURL, httpClient, backendBreaker)
	logging.Logger.Infof("Event ID: BACKEND_CONFIGURED, Description: Using backend at %s", cfg.BackendURL)

	store, closeStore := sessionStore(cfg)
	defer closeStore()

	renderer, err := views.NewRenderer()
	if err != nil {
		logging.Logger.Fatalf("Event ID: TEMPLATE_ERROR, Description: %v", err)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:       services.NewAuthService(backend),
		Sessions:   session.NewManager(store),
		Dashboards: services.NewDashboardRegistry(backend, cfg.FetchConcurrency, session.IdleTimeout),
		Renderer:   renderer,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_ERROR, Description: Server forced to shutdown: %v", err)
	}
	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Server exited")
}

// sessionStore builds the configured session store and its cleanup.
func sessionStore(cfg *config.Config) (sessions.Store, func()) {
	secret := []byte(cfg.SessionSecret)
	if cfg.SessionBackend != config.SessionBackendMongo {
		return session.NewCookieStore(secret, cfg.SecureCookies), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", cfg.MongoURI)

	collection := client.Database(cfg.MongoDBName).Collection(cfg.MongoCollection)
	store := session.NewMongoStore(collection, session.BrowserSessionOptions(cfg.SecureCookies), secret)
	if err := store.EnsureIndexes(ctx); err != nil {
		logging.Logger.Warnf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	return store, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logging.Logger.Errorf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
		}
	}
}
