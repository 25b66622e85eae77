package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"storefront/config"
	"storefront/internal/api"
	logs "storefront/internal/infra/log"
	"storefront/internal/qrlogin"
	"storefront/internal/storage"
	"storefront/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type runParams struct {
	fx.In

	Shutdowner fx.Shutdowner

	Config   *config.Config
	Logger   *slog.Logger
	Client   *api.Client
	Auth     *store.AuthStore
	Session  *store.SessionStore
	Cart     *store.CartStore
	Products *store.ProductStore
}

func main() {
	// A missing .env is fine; config falls back to yaml + real env.
	_ = godotenv.Load()

	fx.New(
		injectInfra(),
		injectStores(),
		fx.Invoke(run),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		api.New,
		storage.New,
		newQRGenerator,
	)
}

func injectStores() fx.Option {
	return fx.Provide(
		store.NewSessionStore,
		store.NewAuthStore,
		store.NewCartStore,
		store.NewOrderStore,
		store.NewPaymentStore,
		store.NewProductStore,
		store.NewModalStore,
	)
}

func newQRGenerator(cfg *config.Config) *qrlogin.Generator {
	return qrlogin.New(cfg.QRCode)
}

// run wires the interceptor hooks and walks a smoke sequence: restore any
// persisted session, sign in with env credentials when provided, then load
// the first catalog page and the cart.
func run(params runParams) error {
	ctx := context.Background()
	logger := params.Logger

	params.Client.OnRateLimited(func(message string) {
		fmt.Fprintln(os.Stderr, message)
	})
	params.Client.OnUnauthorized(func() {
		logger.Warn("Received 401, clearing local session")
		params.Client.ClearToken()
		params.Session.ClearCurrentUser()
	})

	if err := params.Session.Restore(); err != nil {
		logger.Warn("Could not restore persisted session", slog.Any("error", err))
	}
	if user := params.Session.CurrentUser(); user != nil {
		logger.Info("Resuming session", slog.String("mail", user.Mail))
	}

	mail := os.Getenv("STOREFRONT_MAIL")
	password := os.Getenv("STOREFRONT_PASSWORD")
	if mail != "" && password != "" {
		result, err := params.Auth.Login(ctx, store.Credentials{Mail: mail, Password: password})
		switch {
		case err != nil:
			logger.Error("Sign-in failed", slog.String("error", params.Auth.Err()))
		case result.TwoFactorRequired:
			logger.Info("Sign-in pending second factor; run again with STOREFRONT_2FA_CODE")
			if code := os.Getenv("STOREFRONT_2FA_CODE"); code != "" {
				if _, err := params.Auth.VerifyTwoFactor(ctx, mail, code); err != nil {
					logger.Error("Second factor rejected", slog.String("error", params.Auth.Err()))
				}
			}
		default:
			logger.Info("Signed in", slog.String("mail", mail))
		}
	}

	if err := params.Products.FetchProducts(ctx, 1, nil); err != nil {
		logger.Error("Failed to fetch products", slog.String("error", params.Products.Err()))
	} else {
		logger.Info("Fetched catalog page", slog.Int("count", len(params.Products.Products())))
	}

	if params.Session.CurrentUser() != nil {
		if err := params.Cart.FetchCart(ctx); err != nil {
			logger.Error("Failed to fetch cart", slog.String("error", params.Cart.Err()))
		} else {
			logger.Info("Cart loaded",
				slog.Int("items", params.Cart.ItemsCount()),
				slog.Float64("total", params.Cart.TotalAmount()),
			)
		}
	}

	return params.Shutdowner.Shutdown()
}
