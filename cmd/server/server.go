package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/aurastore/storefront/api"
	"github.com/aurastore/storefront/api/background"
	"github.com/aurastore/storefront/config"
	"github.com/aurastore/storefront/core/auth"
	"github.com/aurastore/storefront/core/cart"
	"github.com/aurastore/storefront/core/checkout"
	"github.com/aurastore/storefront/core/claims"
	"github.com/aurastore/storefront/core/order"
	"github.com/aurastore/storefront/core/settings"
	"github.com/aurastore/storefront/core/user"
	"github.com/aurastore/storefront/database"
	"github.com/aurastore/storefront/email"
	"github.com/aurastore/storefront/events"
	"github.com/aurastore/storefront/rate"
	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "AURA"
	var cfg config.Config
	if help, err := conf.Parse(prefix, &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}

	if cfg.Auth.AdminEmail != "" {
		if err := promoteAdmin(context.Background(), db, cfg.Auth.AdminEmail); err != nil {
			logger.Warnf("could not promote %s to admin: %v", cfg.Auth.AdminEmail, err)
		}
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime

	bg := background.New(logger)

	var notifier order.Notifier
	if cfg.Broker.Enabled {
		conn, err := amqp.Dial(cfg.Broker.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			return fmt.Errorf("failed to build the event publisher: %w", err)
		}
		defer pub.Close()

		notifier = pub
	}

	var mailer checkout.Mailer
	if cfg.Email.Enabled {
		mailer = email.New(cfg.Email.Address, cfg.Email.Password, cfg.Email.Host, cfg.Email.Port)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Oauth.DiscoveryTimeout)
	defer cancel()
	google := cfg.Oauth.Google
	oauthProvs, err := auth.MakeProviders(ctx, []auth.ProviderConfig{
		{Name: "google", Client: google.Client, Secret: google.Secret, URL: google.URL, RedirectURL: google.RedirectURL},
	})
	if err != nil {
		return fmt.Errorf("failed to discover oauth providers: %w", err)
	}

	carts := cart.NewStore(cfg.Session.Lifetime)

	identity := func(ctx context.Context) (string, bool) {
		clm, err := claims.Get(ctx)
		if err != nil {
			return "", false
		}
		return clm.UserID, true
	}

	orchestrator := checkout.New(carts, order.Writer{DB: db}, identity)

	limiter := rate.NewLimiter(
		cfg.Rate.CheckoutBurst,
		cfg.Rate.ClientExpiry,
		rate.Every(cfg.Rate.CheckoutInterval),
	)

	settingsCache := settings.NewCache(func(ctx context.Context) ([]settings.Setting, error) {
		return settings.List(ctx, db)
	}, time.Minute)

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:       cfg.Cors.Origin,
		Log:              logger,
		DB:               db,
		Session:          sessionManager,
		Carts:            carts,
		Checkout:         orchestrator,
		CheckoutLimiter:  limiter,
		Background:       bg,
		Notifier:         notifier,
		Mailer:           mailer,
		SettingsCache:    settingsCache,
		Providers:        oauthProvs,
		LoginRedirectURL: cfg.Oauth.LoginRedirectURL,
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete all background tasks: %w", err)
		}
	}
	return nil
}

// promoteAdmin grants the admin role to the configured account, so the
// first operator can be bootstrapped without touching the database.
func promoteAdmin(ctx context.Context, db *sqlx.DB, email string) error {
	usr, err := user.FetchByEmail(ctx, db, email)
	if err != nil {
		return fmt.Errorf("fetching user[%s]: %w", email, err)
	}
	return user.SetRole(ctx, db, usr.ID, claims.RoleAdmin)
}
