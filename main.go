package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub-backend/config"
	"eventhub-backend/database"
	"eventhub-backend/handlers"
	"eventhub-backend/middleware"
	"eventhub-backend/models"
	"eventhub-backend/services"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Charger la configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erreur lors du chargement de la configuration: %v", err)
	}
	models.SetScheduleLocation(cfg.EventTimezone)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connexion à MongoDB
	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatalf("❌ Erreur de connexion à MongoDB: %v", err)
	}
	defer database.Close()

	// Créer les repositories
	userRepo := database.NewUserRepository(database.DB)
	eventRepo := database.NewEventRepository(database.DB)
	fcmTokenRepo := database.NewFCMTokenRepository(database.DB)
	subscriptionRepo := database.NewSubscriptionRepository(database.DB)

	// Initialiser Firebase Cloud Messaging (optionnel)
	fcmService, err := services.NewFCMService(ctx, cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Printf("⚠️  Erreur d'initialisation Firebase: %v", err)
		log.Println("⚠️  Le serveur démarre SANS notifications FCM")
		fcmService = services.NewDisabledFCMService()
	}

	webPushService := services.NewWebPushService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
	if !webPushService.Enabled() {
		log.Println("⚠️  Clés VAPID absentes, Web Push désactivé (go run ./cmd/generate-vapid)")
	}
	notifier := services.NewPushNotifier(fcmService, webPushService, fcmTokenRepo, subscriptionRepo)

	// Cache de la liste publique (optionnel)
	var eventCache services.EventCache = services.NoopEventCache{}
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = services.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis indisponible, cache désactivé: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
			eventCache = services.NewRedisEventCache(rdb, cfg.EventsCacheTTL)
		}
	}

	registrationService := services.NewRegistrationService(eventRepo, notifier, eventCache)

	// Passage automatique des événements terminés et génération des fiches de contrôle
	statusCron := services.NewStatusCron(eventRepo, registrationService, cfg.StatusSweepSpec)
	if err := statusCron.Start(); err != nil {
		log.Fatalf("❌ STATUS_SWEEP_SPEC invalide: %v", err)
	}

	slackService := services.NewSlackService(cfg.SlackWebhookURL)
	limiter := middleware.NewRateLimiter(ctx, middleware.LimiterConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	})

	// Créer les handlers
	checks := map[string]handlers.DependencyCheck{
		"database": func(context.Context) error { return database.Ping() },
	}
	if rdb != nil {
		checks["cache"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	healthHandler := handlers.NewHealthHandler(cfg.Environment, checks)
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	eventHandler := handlers.NewEventHandler(eventRepo, registrationService, eventCache)
	registrationHandler := handlers.NewRegistrationHandler(eventRepo, userRepo, registrationService)
	qrHandler := handlers.NewQRHandler(eventRepo, registrationService, services.NewQRService())
	userHandler := handlers.NewUserHandler(userRepo, eventRepo)
	adminHandler := handlers.NewAdminHandler(userRepo, eventRepo, notifier)
	notificationHandler := handlers.NewNotificationHandler(subscriptionRepo, webPushService.PublicKey())
	fcmHandler := handlers.NewFCMHandler(fcmTokenRepo)

	// Créer le routeur
	router := mux.NewRouter()
	router.Use(middleware.Logging(slackService))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	guest := middleware.Guest(cfg.JWTSecret)

	// Routes publiques
	router.HandleFunc("/api/health", healthHandler.Health).Methods("GET")
	router.Handle("/api/auth/register", guest(http.HandlerFunc(authHandler.Register))).Methods("POST", "OPTIONS")
	router.Handle("/api/auth/login", guest(http.HandlerFunc(authHandler.Login))).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/events", eventHandler.GetPublicEvents).Methods("GET", "OPTIONS")
	// L'id est contraint pour ne pas capturer /api/events/mine
	router.HandleFunc("/api/events/{event_id:[0-9a-fA-F]{24}}", eventHandler.GetPublicEvent).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/notifications/vapid-public-key", notificationHandler.GetVAPIDPublicKey).Methods("GET", "OPTIONS")

	// Routes protégées
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth(cfg.JWTSecret))

	organizerOnly := middleware.RequireRole(userRepo, models.RoleOrganizer, models.RoleAdmin)
	protected.Handle("/events", organizerOnly(http.HandlerFunc(eventHandler.CreateEvent))).Methods("POST", "OPTIONS")
	protected.HandleFunc("/events/mine", eventHandler.GetMyEvents).Methods("GET", "OPTIONS")
	protected.HandleFunc("/events/{event_id}", eventHandler.UpdateEvent).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/events/{event_id}/cancel", eventHandler.CancelEvent).Methods("PUT", "OPTIONS")

	// Workflow d'inscription
	protected.Handle("/events/{event_id}/register", limiter.Middleware(http.HandlerFunc(registrationHandler.Register))).Methods("POST", "OPTIONS")
	protected.HandleFunc("/events/{event_id}/register", registrationHandler.Deregister).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/events/{event_id}/pending", registrationHandler.GetPending).Methods("GET", "OPTIONS")
	protected.HandleFunc("/events/{event_id}/pending/{user_id}/approve", registrationHandler.Approve).Methods("POST", "OPTIONS")
	protected.HandleFunc("/events/{event_id}/pending/{user_id}/reject", registrationHandler.Reject).Methods("POST", "OPTIONS")

	// Contrôle d'accès par QR code
	protected.Handle("/qr/generate", limiter.Middleware(http.HandlerFunc(qrHandler.Generate))).Methods("POST", "OPTIONS")
	protected.Handle("/qr/verify", limiter.Middleware(http.HandlerFunc(qrHandler.Verify))).Methods("POST", "OPTIONS")

	// Compte utilisateur
	protected.HandleFunc("/user/profile", userHandler.GetProfile).Methods("GET", "OPTIONS")
	protected.HandleFunc("/user/registrations", userHandler.GetRegistrations).Methods("GET", "OPTIONS")
	protected.HandleFunc("/user/request-organizer", userHandler.RequestOrganizer).Methods("POST", "OPTIONS")

	// Notifications
	protected.HandleFunc("/notifications/subscribe", notificationHandler.Subscribe).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notifications/unsubscribe", notificationHandler.Unsubscribe).Methods("POST", "OPTIONS")
	protected.HandleFunc("/fcm/subscribe", fcmHandler.Subscribe).Methods("POST", "OPTIONS")
	protected.HandleFunc("/fcm/unsubscribe", fcmHandler.Unsubscribe).Methods("POST", "OPTIONS")

	// Routes Admin (protégées par Auth + rôle admin vérifié en base)
	adminRouter := protected.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.RequireRole(userRepo, models.RoleAdmin))
	adminRouter.HandleFunc("/users", adminHandler.GetUsers).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/pending-organizers", adminHandler.GetPendingOrganizers).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/organizers", adminHandler.GetOrganizers).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/events", adminHandler.GetEvents).Methods("GET", "OPTIONS")
	adminRouter.HandleFunc("/approve-organizer/{id}", adminHandler.ApproveOrganizer).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/reject-organizer/{id}", adminHandler.RejectOrganizer).Methods("PUT", "OPTIONS")
	adminRouter.HandleFunc("/stats", adminHandler.GetStats).Methods("GET", "OPTIONS")

	// Démarrer le serveur
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Serveur démarré sur http://%s", addr)
		log.Printf("📝 Environnement: %s", cfg.Environment)
		log.Printf("🕒 Fuseau horaire des événements: %s", cfg.EventTimezone)
		log.Println("📋 Routes principales:")
		log.Println("   POST   /api/auth/register                   - Création de compte")
		log.Println("   POST   /api/auth/login                      - Connexion")
		log.Println("   GET    /api/events                          - Liste publique (?status=&category=)")
		log.Println("   POST   /api/events/{id}/register            - S'inscrire")
		log.Println("   DELETE /api/events/{id}/register            - Se désinscrire")
		log.Println("   POST   /api/events/{id}/pending/{user}/...  - Valider / refuser une demande")
		log.Println("   POST   /api/qr/generate | /api/qr/verify    - Contrôle d'accès")
		log.Println("   GET    /api/admin/...                       - Administration")
		log.Println("\n✨ Le serveur est prêt à recevoir des requêtes!")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Erreur du serveur: %v", err)
		}
	}()

	// Attendre le signal d'arrêt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Arrêt du serveur...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Erreur lors de l'arrêt du serveur: %v", err)
	}
	statusCron.Stop()
	stop()
	log.Println("✓ Serveur arrêté proprement")
}
