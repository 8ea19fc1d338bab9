// internal/platform/di/container.go
package di

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/option"

	_ "github.com/lib/pq"

	"luminaire/internal/adapters/in/http/middleware"
	storefrontHandler "luminaire/internal/adapters/in/http/storefront/handler"
	"luminaire/internal/adapters/out/analytics"
	"luminaire/internal/adapters/out/cache"
	"luminaire/internal/adapters/out/commerce"
	dbrepo "luminaire/internal/adapters/out/db"
	fsrepo "luminaire/internal/adapters/out/firestore"
	"luminaire/internal/application/store"
	"luminaire/internal/application/usecase"
	cartdom "luminaire/internal/domain/cart"
	appcfg "luminaire/internal/infra/config"
	"luminaire/internal/infra/secrets"
	"luminaire/internal/platform/metrics"
)

// Container is the bundle of wired dependencies main.go serves from.
type Container struct {
	Config *appcfg.Config

	Store   *store.CartStore
	CartUC  *usecase.CartUsecase
	DriftUC *usecase.DriftUsecase
	AuthUC  *usecase.AuthUsecase

	Busy     *storefrontHandler.BusyIndicator
	Registry *prometheus.Registry
	Metrics  *metrics.Set

	FirebaseAuth *middleware.FirebaseAuthClient
	Sheets       *appcfg.SheetProvider

	// Owned clients, closed by Close.
	db        *sql.DB
	rdb       *redis.Client
	fs        *firestore.Client
	gcs       *storage.Client
	secrets   *secrets.Provider
	cleanupFn []func()
}

// Close releases owned resources. Safe to call on a partially built
// container.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	if c.fs != nil {
		_ = c.fs.Close()
	}
	if c.gcs != nil {
		_ = c.gcs.Close()
	}
	if c.secrets != nil {
		_ = c.secrets.Close()
	}
	for _, fn := range c.cleanupFn {
		fn()
	}
}

// Build wires the engine. External backends are best-effort: every
// optional client that fails to initialize logs a warning and falls back
// (Redis to the in-memory cache, Postgres to Firestore to the in-memory
// identity store), so a bare environment still serves.
func Build(ctx context.Context, cfg *appcfg.Config) (*Container, error) {
	c := &Container{Config: cfg}

	var clientOpts []option.ClientOption
	if cred := strings.TrimSpace(cfg.GCPCreds); cred != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cred))
	}

	// Secret Manager (optional): resolves the Redis password when the env
	// carries a secret reference instead of the value.
	if cfg.GCPProject != "" {
		if sm, err := secretmanager.NewClient(ctx, clientOpts...); err != nil {
			log.Printf("[di] WARN: secret manager init failed: %v", err)
		} else if provider, err := secrets.NewProvider(sm, cfg.GCPProject); err != nil {
			_ = sm.Close()
		} else {
			c.secrets = provider
		}
	}

	redisPassword := cfg.RedisPassword
	if redisPassword == "" && c.secrets != nil {
		if v, err := c.secrets.Get(ctx, "storefront-redis-password"); err == nil {
			redisPassword = v
		}
	}

	// Commerce client: GraphQL gateway, section fetcher and login client
	// in one.
	gateway := commerce.NewClient(
		cfg.CommerceCoreEndpoint,
		cfg.CommerceBaseURL,
		cfg.StoreViewCode,
		cfg.StoreCode,
		cfg.CommerceTimeout,
	)

	// Section cache: Redis when configured, in-memory otherwise.
	var sectionCache cartdom.SectionCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: redisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[di] WARN: redis ping failed, falling back to in-memory cache: %v", err)
			_ = rdb.Close()
		} else {
			c.rdb = rdb
			rc, err := cache.NewRedisSectionCache(rdb, gateway, "storefront:"+cfg.SessionID, cfg.SectionTTL)
			if err == nil {
				sectionCache = rc
			}
		}
	}
	if sectionCache == nil {
		mc, err := cache.NewMemorySectionCache(gateway)
		if err != nil {
			return nil, err
		}
		sectionCache = mc
	}

	// Durable cart identity: Postgres, then Firestore, then in-memory.
	var identity cartdom.IdentityRepository
	if cfg.DatabaseURL != "" {
		if db, err := sql.Open("postgres", cfg.DatabaseURL); err != nil {
			log.Printf("[di] WARN: open db failed: %v", err)
		} else if err := db.PingContext(ctx); err != nil {
			log.Printf("[di] WARN: db ping failed, skipping postgres identity store: %v", err)
			_ = db.Close()
		} else {
			c.db = db
			if repo, err := dbrepo.NewCartIdentityRepositoryPG(db); err == nil {
				identity = repo
			}
		}
	}
	if identity == nil && cfg.FirestoreProjectID != "" {
		if fs, err := firestore.NewClient(ctx, cfg.FirestoreProjectID, clientOpts...); err != nil {
			log.Printf("[di] WARN: firestore init failed: %v", err)
		} else {
			c.fs = fs
			if repo, err := fsrepo.NewCartIdentityRepositoryFS(fs); err == nil {
				identity = repo
			}
		}
	}
	if identity == nil {
		log.Printf("[di] no durable identity store configured, cart ids will not survive restarts")
		identity = cache.NewMemoryIdentityRepository()
	}

	// Firebase Auth (optional): verifies customer tokens on the HTTP edge.
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: firebase init failed: %v", err)
		} else if authClient, err := app.Auth(ctx); err != nil {
			log.Printf("[di] WARN: firebase auth init failed: %v", err)
		} else {
			c.FirebaseAuth = authClient
		}
	}

	// Config sheets (optional): published per-country storefront config.
	if cfg.GCSBucket != "" {
		if gcs, err := storage.NewClient(ctx, clientOpts...); err != nil {
			log.Printf("[di] WARN: storage init failed: %v", err)
		} else {
			c.gcs = gcs
			if sheets, err := appcfg.NewSheetProvider(gcs, cfg.GCSBucket, cfg.ConfigEnv); err != nil {
				log.Printf("[di] WARN: sheet provider init failed: %v", err)
			} else {
				c.Sheets = sheets
			}
		}
	}

	c.Registry = prometheus.NewRegistry()
	c.Metrics = metrics.NewSet(c.Registry)

	c.Busy = storefrontHandler.NewBusyIndicator()

	st, err := store.NewCartStore(
		cfg.SessionID,
		sectionCache,
		gateway,
		identity,
		store.TokenFunc(middleware.AuthToken),
	)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = st

	var emitter usecase.AnalyticsEmitter
	if cfg.AnalyticsEndpoint != "" {
		emitter = analytics.NewDataLayerClient(cfg.AnalyticsEndpoint, 0)
	}

	cartUC, err := usecase.NewCartUsecase(st, gateway, sectionCache, c.Busy, emitter, c.Metrics)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.CartUC = cartUC

	driftUC, err := usecase.NewDriftUsecase(st, sectionCache, c.Busy, c.Metrics)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.DriftUC = driftUC

	authUC, err := usecase.NewAuthUsecase(sectionCache, gateway, driftUC)
	if err != nil {
		c.Close()
		return nil, err
	}
	authUC.SetLoginTimeout(cfg.LoginTimeout)
	c.AuthUC = authUC

	return c, nil
}
