// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostel-meals/config"
	"hostel-meals/controllers"
	"hostel-meals/middleware"
	"hostel-meals/routes"
	"hostel-meals/services"
	"hostel-meals/store"
	"hostel-meals/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	readTimeout       = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	cfg.ConfigureLogging()

	st, err := openStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open store")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.Close(ctx); err != nil {
			logrus.WithError(err).Error("failed to close store")
		}
	}()

	// Services
	tokens := services.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTL)
	authorizer := services.NewAuthorizer(st)
	emailService := utils.NewEmailService(cfg.PostmarkAPIToken, cfg.EmailSender)
	ledger := services.NewEngagementLedger(st, st, st, st)
	views := services.NewViews(st, st, st, st, st)

	// Controllers
	ctrls := routes.Controllers{
		Users:        controllers.NewUserController(services.NewAccounts(st, tokens), authorizer),
		Meals:        controllers.NewMealController(services.NewCatalog(st), ledger),
		Engagement:   controllers.NewEngagementController(ledger, authorizer),
		MealRequests: controllers.NewMealRequestController(services.NewRequestLifecycle(authorizer, st, emailService), views, authorizer),
		Upcoming:     controllers.NewUpcomingController(services.NewPublisher(st, st)),
		Dashboard:    controllers.NewDashboardController(views, authorizer),
		Payments:     controllers.NewPaymentController(services.NewPayments(utils.NewStripeGateway(cfg.StripeSecretKey), st), authorizer),
	}

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, middleware.NewAuth(tokens, authorizer), ctrls)

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(time.Minute, stop)

	handler := middleware.RequestLogger(limiter.Handler(router))
	handler = handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)(handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(logrus.StandardLogger()))(handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logrus.WithField("port", cfg.Port).Info("server is running")
	err = serve(server, quit, cfg.ShutdownTimeout)
	close(stop)
	if err != nil {
		logrus.WithError(err).Error("server stopped")
	}
}

// serve runs server until quit fires or the listener fails. Either way it
// returns to the caller so deferred cleanup runs.
func serve(server *http.Server, quit <-chan os.Signal, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serveErr:
		return err
	}

	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logrus.Warn("using in-memory store; data is lost on restart")
		return store.NewMemory(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return store.OpenMongo(ctx, cfg.MongoConnectionURI(), cfg.DBName)
}
