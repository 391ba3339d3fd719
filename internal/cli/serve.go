package cli

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/snapquiz/backend/internal/auth"
	"github.com/snapquiz/backend/internal/config"
	"github.com/snapquiz/backend/internal/generator"
	"github.com/snapquiz/backend/internal/middleware"
	"github.com/snapquiz/backend/internal/quiz"
	"github.com/snapquiz/backend/internal/store"
)

func newServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Account + identity boundaries
	var (
		accounts auth.AccountStore
		identity auth.IdentityProvider
	)
	if cfg.DatabaseConfigured() {
		db, err := store.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := store.Migrate(db); err != nil {
			return err
		}
		accounts = store.New(db)
		identity = store.NewIdentity(db)
	} else {
		log.Println("No database configured, using in-memory stores")
		accounts = store.NewMemoryStore()
		identity = store.NewMemoryIdentity()
	}

	// Quiz session storage
	var sessions quiz.SessionStore = quiz.NewMemorySessionStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sessions = quiz.NewRedisSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))
	}

	bridge := auth.NewKeyBridge()
	client := generator.NewTextClient(cfg.Generator.Provider, cfg.Generator.Endpoint, cfg.Generator.Model, bridge)

	pipeline := quiz.NewPipeline(client, sessions, accounts)
	authService := auth.NewService(identity, accounts, bridge)
	authHandler := auth.NewHandler(authService, accounts)
	quizHandler := quiz.NewHandler(pipeline, sessions)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/username-check", authHandler.UsernameCheck).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	protected.HandleFunc("/quiz/generate", quizHandler.Generate).Methods("POST")
	protected.HandleFunc("/quiz", quizHandler.GetQuiz).Methods("GET")
	protected.HandleFunc("/quiz/select", quizHandler.SelectOption).Methods("POST")
	protected.HandleFunc("/quiz/reset", quizHandler.ResetOption).Methods("POST")
	protected.HandleFunc("/quiz/score", quizHandler.Score).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // quiz generation holds the response open
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
