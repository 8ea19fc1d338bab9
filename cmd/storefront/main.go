// cmd/storefront/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"luminaire/internal/adapters/in/http/middleware"
	"luminaire/internal/adapters/in/http/storefront"
	storefrontHandler "luminaire/internal/adapters/in/http/storefront/handler"
	appcfg "luminaire/internal/infra/config"
	"luminaire/internal/platform/di"
)

func main() {
	ctx := context.Background()
	cfg := appcfg.Load()

	// Lightweight healthz first so PORT is listened quickly.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// DI container and heavy deps; keep /healthz even on failure.
	var cont *di.Container
	if c, err := di.Build(ctx, cfg); err != nil {
		log.Printf("[boot] WARN: di init failed: %v (serving /healthz only)", err)
	} else {
		cont = c
		defer cont.Close()

		deps := storefront.Deps{
			Cart:    storefrontHandler.NewCartHandler(cont.CartUC, cont.DriftUC, cont.Store, cont.Busy),
			Events:  storefrontHandler.NewEventsHandler(cont.Store),
			Auth:    storefrontHandler.NewAuthHandler(cont.AuthUC),
			Locale:  storefrontHandler.NewLocaleHandler(cont.Sheets),
			Metrics: promhttp.HandlerFor(cont.Registry, promhttp.HandlerOpts{}),
		}
		storefront.Register(mux, deps)
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	var handler http.Handler = mux
	handler = middleware.Recover(handler)
	if cont != nil {
		auth := &middleware.CustomerAuth{FirebaseAuth: cont.FirebaseAuth}
		handler = auth.Handler(handler)
	}
	handler = middleware.CORS(strings.Split(cfg.AllowedOrigins, ","))(handler)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		// No write timeout: /storefront/cart/events holds the
		// connection open.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Printf("[boot] received signal: %v; shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[boot] server shutdown error: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("[boot] listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[boot] server error: %v", err)
	}

	<-idleConnsClosed
	log.Printf("[boot] server stopped")
}
