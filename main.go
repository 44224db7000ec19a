package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitQuestAPI/handlers"
	"fitQuestAPI/internal/notification"
	"fitQuestAPI/middleware"
	"fitQuestAPI/scheduler"
	"fitQuestAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	challengeService    *services.ChallengeService
	progressService     *services.ProgressService
	leaderboardService  *services.LeaderboardService
	reminderService     *services.ReminderService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
	sched               *scheduler.Scheduler
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	notificationService = services.NewNotificationService(dbPool)
	userService = services.NewUserService(dbPool)
	challengeService = services.NewChallengeService(dbPool)
	progressService = services.NewProgressService(dbPool, notificationService)
	leaderboardService = services.NewLeaderboardService(dbPool, challengeService, progressService)

	sched = scheduler.New(scheduler.RealClock(), notificationService.ShowReminder)
	reminderService = services.NewReminderService(dbPool, sched)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	// The scheduler keeps timers in memory only, so re-arm every enabled
	// reminder from the database on boot.
	armed, err := reminderService.SyncSchedules(ctx)
	if err != nil {
		log.Printf("Warning: Could not sync reminder schedules: %v", err)
	} else {
		log.Printf("Armed %d reminder schedules", armed)
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Timers only cover the next 24h, so keep refreshing the armed set in the
	// background. Twice a day leaves headroom for weekly recurrences.
	resyncCtx, stopResync := context.WithCancel(context.Background())
	defer stopResync()
	sched.StartResync(resyncCtx, 12*time.Hour, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		armed, err := reminderService.SyncSchedules(ctx)
		if err != nil {
			return err
		}
		log.Printf("Resync armed %d reminder schedules", armed)
		return nil
	})

	userHandler := handlers.NewUserHandler(userService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, leaderboardService)
	progressHandler := handlers.NewProgressHandler(progressService, challengeService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "fitQuest-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user", userHandler.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.GetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{id}/join", challengeHandler.JoinChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/leaderboard", challengeHandler.GetLeaderboard).Methods("GET")

	protected.HandleFunc("/challenges/{id}/progress", progressHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/challenges/{id}/entries", progressHandler.LogEntry).Methods("POST")
	protected.HandleFunc("/entries/{id}", progressHandler.DeleteEntry).Methods("DELETE")

	protected.HandleFunc("/reminders", reminderHandler.CreateReminder).Methods("POST")
	protected.HandleFunc("/reminders", reminderHandler.GetReminders).Methods("GET")
	protected.HandleFunc("/reminders/sync", reminderHandler.SyncReminders).Methods("POST")
	protected.HandleFunc("/reminders/{id}", reminderHandler.UpdateReminder).Methods("PUT")
	protected.HandleFunc("/reminders/{id}", reminderHandler.DeleteReminder).Methods("DELETE")

	protected.HandleFunc("/notifications/preferences", notificationHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/notifications/preferences", notificationHandler.UpdatePreferences).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	stopResync()
	sched.Close()
	log.Println("Server shutdown complete")
}
