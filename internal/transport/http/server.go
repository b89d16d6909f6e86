package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"apexgarage/internal/config"
	"apexgarage/internal/docstore"
	"apexgarage/internal/handler"
	"apexgarage/internal/reconcile"
	"apexgarage/internal/repository"
	"apexgarage/internal/service"
)

func Run() error {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Open the document store
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer cleanup()

	// 3. Repositories
	profileRepo := repository.NewProfileRepository(store)
	followRepo := repository.NewFollowRepository(store)
	likeRepo := repository.NewLikeRepository(store)
	tuneRepo := repository.NewTuneRepository(store)

	// 4. Services
	userService := service.NewUserService(profileRepo, followRepo, likeRepo, tuneRepo)
	authService := service.NewAuthService(cfg)
	followService := service.NewFollowService(followRepo, profileRepo)
	likeService := service.NewLikeService(likeRepo, profileRepo)
	tuneService := service.NewTuneService(tuneRepo, profileRepo, followRepo)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// 5. Optional counter reconciliation sweep
	if cfg.ReconcileEnabled {
		reconciler := reconcile.NewReconciler(store, likeRepo, profileRepo, cfg.ReconcileInterval)
		reconciler.Start(ctx)
		defer reconciler.Stop()
	}

	// 6. Router
	router := NewRouter(RouterConfig{
		AuthHandler:   handler.NewAuthHandler(userService, authService),
		UserHandler:   handler.NewUserHandler(userService),
		FollowHandler: handler.NewFollowHandler(followService),
		LikeHandler:   handler.NewLikeHandler(likeService),
		TuneHandler:   handler.NewTuneHandler(tuneService),
		MediaHandler:  handler.NewMediaHandler(mediaService),
		JWTSecret:     cfg.JWTSecret,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}

// openStore builds the configured document store backend. The cleanup func
// closes whatever connections the backend holds.
func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, func(), error) {
	switch cfg.DocstoreDriver {
	case "postgres":
		db, err := docstore.ConnectPostgres(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		store := docstore.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case "redis":
		store, err := docstore.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case "memory":
		log.Println("Using in-memory document store; data will not survive a restart")
		return docstore.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown docstore driver %q", cfg.DocstoreDriver)
	}
}
