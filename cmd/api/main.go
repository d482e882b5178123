package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/overseaspath/crm-backend/internal/infra/cache"
	"github.com/overseaspath/crm-backend/internal/infra/database"
	"github.com/overseaspath/crm-backend/internal/infra/http/handlers"
	"github.com/overseaspath/crm-backend/internal/infra/http/middleware"
	"github.com/overseaspath/crm-backend/internal/infra/mail"
	"github.com/overseaspath/crm-backend/internal/infra/queue"
	"github.com/overseaspath/crm-backend/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	sessions := cache.NewSessionStore(
		os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB", 0),
	)

	// The two processing slots are configuration, not hard-coded people.
	slots := usecase.OperatorSlots{
		Stage1ID: envInt("STAGE1_OPERATOR_ID", 0),
		Stage2ID: envInt("STAGE2_OPERATOR_ID", 0),
	}
	if slots.Stage2ID == 0 {
		log.Fatal("STAGE2_OPERATOR_ID must be configured")
	}

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	clientRepo := database.NewClientRepository(db)
	notifRepo := database.NewNotificationRepository(db)
	userRepo := database.NewUserRepository(db)

	// 2. Side channels
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	emitter := usecase.NewNotificationEmitter(notifRepo, userRepo, producer)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), envInt("MAIL_PORT", 587),
		os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"), os.Getenv("MAIL_FROM"),
	)

	// 3. Delivery worker (drains the notification queue into SMTP)
	worker := queue.NewWorker(rabbitMQ.Ch, mailSender)
	go worker.Start(queue.QueueName)

	// 4. Use cases
	createLeadUC := usecase.NewCreateLeadUseCase(leadRepo, emitter)
	updateLeadUC := usecase.NewUpdateLeadUseCase(leadRepo, emitter)
	deleteLeadUC := usecase.NewDeleteLeadUseCase(leadRepo)
	registerUC := usecase.NewCompleteRegistrationUseCase(leadRepo, clientRepo, slots, emitter)
	updateClientUC := usecase.NewUpdateClientUseCase(clientRepo)
	handoffUC := usecase.NewHandoffUseCase(clientRepo, slots, emitter)
	milestoneUC := usecase.NewRecordMilestoneUseCase(clientRepo)
	deleteClientUC := usecase.NewDeleteClientUseCase(clientRepo)

	// 5. Handlers
	leadHandler := handlers.NewLeadHandler(createLeadUC, updateLeadUC, deleteLeadUC, registerUC, leadRepo)
	clientHandler := handlers.NewClientHandler(updateClientUC, handoffUC, milestoneUC, deleteClientUC, clientRepo)
	notifHandler := handlers.NewNotificationHandler(notifRepo)
	captureHandler := handlers.NewCaptureHandler(leadRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, sessions)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/public/leads", captureHandler.CaptureLead)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(sessions))

		r.Post("/leads", leadHandler.Create)
		r.Get("/leads", leadHandler.List)
		r.Get("/leads/{id}", leadHandler.Get)
		r.Patch("/leads/{id}", leadHandler.Patch)
		r.Delete("/leads/{id}", leadHandler.Delete)
		r.Post("/leads/{id}/registration", leadHandler.CompleteRegistration)

		r.Get("/clients", clientHandler.List)
		r.Get("/clients/{id}", clientHandler.Get)
		r.Patch("/clients/{id}", clientHandler.Patch)
		r.Delete("/clients/{id}", clientHandler.Delete)
		r.Post("/clients/{id}/handoff", clientHandler.Handoff)
		r.Post("/clients/{id}/milestones", clientHandler.RecordMilestone)

		r.Get("/notifications", notifHandler.List)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🔥 CRM API listening on :%s", port)
	http.ListenAndServe(":"+port, r)
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}
