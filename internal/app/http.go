package app

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/jsdevtools/client1/internal/apps"
	"github.com/jsdevtools/client1/internal/auth/credentials"
	"github.com/jsdevtools/client1/internal/auth/handler"
	"github.com/jsdevtools/client1/internal/auth/provider"
	"github.com/jsdevtools/client1/internal/auth/provider/github"
	"github.com/jsdevtools/client1/internal/auth/provider/google"
	"github.com/jsdevtools/client1/internal/auth/provider/local"
	"github.com/jsdevtools/client1/internal/config"
	"github.com/jsdevtools/client1/internal/logger"
	"github.com/jsdevtools/client1/internal/middleware"
	"github.com/jsdevtools/client1/internal/redirect"
	"github.com/jsdevtools/client1/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	binder := session.NewBinder(sessionStore, cfg.SessionTTL)

	cookieOpts := session.CookieOptions{
		Domain:   cfg.CookieDomain,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	applications := apps.FromMap(cfg.Apps)
	redirects := redirect.NewCoordinator(applications, cfg.LoginBaseURL)

	registry, err := setupProviders(ctx, cfg, infra)
	if err != nil {
		return nil, nil, err
	}

	authHandler := handler.NewHandler(
		registry,
		binder,
		applications,
		redirects,
		cookieOpts,
		cfg.AppSlug,
		cfg.Env == "development",
	)

	gate := middleware.NewGate(sessionStore, binder, cookieOpts)

	loginURL, err := redirects.LoginURL(cfg.AppSlug)
	if err != nil {
		return nil, nil, err
	}
	authMiddleware := middleware.NewAuthMiddleware(gate, loginURL)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Login surface (shared; co-hosted when enabled)
	// ----------------------------

	if cfg.LoginSurface {
		authHandler.RegisterRoutes(router)
	}

	// Logout lives on every application so a shared logout is reachable
	// from any of them.
	router.GET("/logout", authHandler.Logout)

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		identity, ok := middleware.IdentityFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.JSON(200, gin.H{
			"provider": identity.Provider,
			"subject":  identity.Subject,
			"email":    identity.Email,
			"name":     identity.Name,
		})
	})

	// ----------------------------
	// Static assets + protected app shell
	// ----------------------------

	// Static assets are public. The shell (index.html) is only served
	// to authenticated sessions; everyone else is redirected to the
	// login surface for this application.
	shell := authMiddleware.RequireAuth(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(cfg.StaticDir, "index.html"))
		},
	))

	router.NoRoute(func(c *gin.Context) {
		if asset := staticAsset(cfg.StaticDir, c.Request.URL.Path); asset != "" {
			c.File(asset)
			return
		}
		shell.ServeHTTP(c.Writer, c.Request)
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if infra.DB != nil {
			return infra.DB.Close()
		}
		return nil
	}, nil
}

func setupProviders(
	ctx context.Context,
	cfg config.Config,
	infra *Infra,
) (*provider.Registry, error) {

	var adapters []provider.Adapter

	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, googleProvider)
	}

	if cfg.GithubClientID != "" {
		githubProvider, err := github.New(
			cfg.GithubClientID,
			cfg.GithubClientSecret,
			cfg.GithubRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, githubProvider)
	}

	if infra.DB != nil {
		adapters = append(adapters, local.New(credentials.NewService(infra.DB)))
	}

	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	logger.Info("identity providers registered", map[string]any{
		"providers": names,
	})

	return provider.NewRegistry(adapters...), nil
}

// staticAsset resolves a request path to a file under the static dir,
// or "" when the path is not a servable asset. index.html is never
// served this way; the shell goes through the authentication gate.
func staticAsset(staticDir, requestPath string) string {
	clean := path.Clean("/" + requestPath)
	if clean == "/" || path.Base(clean) == "index.html" {
		return ""
	}

	full := filepath.Join(staticDir, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return ""
	}
	return full
}
