package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/michaelberns/wtt/db"
	"github.com/michaelberns/wtt/db/migrations"
	"github.com/michaelberns/wtt/internal/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	conn := os.Getenv("POSTGRES_CONN")
	if conn == "" {
		log.Fatal("POSTGRES_CONN is not set")
	}

	migrations.Run()

	database, err := sqlx.Connect("postgres", conn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	store := db.NewStorage(database)
	h := handlers.NewHandler(store)
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		h.UploadDir = dir
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		r.Post("/users", h.CreateUserHandler)
		r.Post("/users/sign-in", h.SignInHandler)
		r.Get("/users/{userId}", h.GetUserHandler)
		r.Put("/users/{userId}", h.UpdateUserHandler)
		r.Get("/users/{userId}/jobs", h.GetUserJobsHandler)
		r.Get("/users/{userId}/notifications", h.GetNotificationsHandler)

		r.Get("/jobs", h.GetJobsHandler)
		r.Get("/jobs/map", h.GetJobsForMapHandler)
		r.Post("/jobs", h.CreateJobHandler)
		r.Get("/jobs/{jobId}", h.GetJobHandler)
		r.Put("/jobs/{jobId}", h.UpdateJobHandler)
		r.Delete("/jobs/{jobId}", h.DeleteJobHandler)
		r.Post("/jobs/{jobId}/request-close", h.RequestCloseHandler)
		r.Post("/jobs/{jobId}/close", h.ApproveCloseHandler)
		r.Post("/jobs/{jobId}/reject-close", h.RejectCloseHandler)

		r.Get("/jobs/{jobId}/offers", h.GetOffersHandler)
		r.Post("/jobs/{jobId}/offers", h.CreateOfferHandler)
		r.Post("/offers/{offerId}/accept", h.AcceptOfferHandler)
		r.Post("/offers/{offerId}/reject", h.RejectOfferHandler)

		r.Post("/notifications/{notificationId}/read", h.MarkNotificationReadHandler)

		r.Post("/upload", h.UploadHandler)
	})

	// Раздача загруженных файлов
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.UploadDir))))

	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}

	log.Printf("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
