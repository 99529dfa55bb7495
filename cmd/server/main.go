package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"parkspot/internal/api"
	"parkspot/internal/auth"
	"parkspot/internal/repository"
	"parkspot/internal/service"
)

func main() {
	godotenv.Load()
	logrus.SetFormatter(new(logrus.JSONFormatter))

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logrus.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		logrus.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		logrus.Fatalf("Failed to connect to DB: %v", err)
	}

	lotRepo := repository.NewLotRepository(database)
	slotRepo := repository.NewSlotRepository(database)
	bookingRepo := repository.NewBookingRepository(database)
	statsRepo := repository.NewStatsRepository(database)
	adminAuthRepo := repository.NewAdminAuthRepository(database)

	parkingSvc := service.NewParkingService(lotRepo, slotRepo, bookingRepo)
	bookingSvc := service.NewBookingService(lotRepo, slotRepo, bookingRepo)
	bookingSvc.Notify = service.NewNotifyService()
	if os.Getenv("STRIPE_SECRET_KEY") != "" {
		bookingSvc.Payment = service.NewStripeService()
	}
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)
	jobSvc := service.NewJobService(bookingSvc)

	parkingHandler := api.NewParkingHandler(parkingSvc)
	bookingHandler := api.NewBookingHandler(bookingSvc)
	adminHandler := api.NewAdminHandler(parkingSvc, bookingSvc, statsRepo)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/lots", parkingHandler.ListLots).Methods("GET")
	r.HandleFunc("/api/lots/{id}", parkingHandler.GetLot).Methods("GET")
	r.HandleFunc("/api/lots/{id}/availability", parkingHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")

	// User endpoints (authenticated)
	user := r.PathPrefix("/api").Subrouter()
	user.Use(auth.UserAuthMiddleware)
	user.HandleFunc("/bookings", bookingHandler.CreateBooking).Methods("POST")
	user.HandleFunc("/bookings", bookingHandler.ListMyBookings).Methods("GET")
	user.HandleFunc("/bookings/{id}", bookingHandler.GetBooking).Methods("GET")
	user.HandleFunc("/bookings/{id}", bookingHandler.CancelBooking).Methods("DELETE")

	// Gate scanners (authenticated)
	user.HandleFunc("/access/entry", bookingHandler.ValidateEntry).Methods("POST")
	user.HandleFunc("/access/exit", bookingHandler.ValidateExit).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/register", adminAuthHandler.Register).Methods("POST")
	admin.HandleFunc("/lots", adminHandler.CreateLot).Methods("POST")
	admin.HandleFunc("/lots/{id}", adminHandler.UpdateLot).Methods("PUT")
	admin.HandleFunc("/lots/{id}", adminHandler.DeactivateLot).Methods("DELETE")
	admin.HandleFunc("/lots/{id}/slots", adminHandler.CreateBulkSlots).Methods("POST")
	admin.HandleFunc("/slots/{id}", adminHandler.UpdateSlot).Methods("PUT")
	admin.HandleFunc("/slots/{id}", adminHandler.DeleteSlot).Methods("DELETE")
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{id}/status", adminHandler.UpdateBookingStatus).Methods("PUT")
	admin.HandleFunc("/stats", adminHandler.DashboardStats).Methods("GET")

	c := cron.New()
	if _, err := c.AddFunc("@every 5m", func() {
		if err := jobSvc.CompleteOverdueBookings(); err != nil {
			logrus.WithField("error", err).Error("overdue booking sweep failed")
		}
	}); err != nil {
		logrus.Fatalf("Failed to schedule booking sweep: %v", err)
	}
	c.Start()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logrus.Infof("Server running on port %s", port)
	logrus.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, corsHandler)))
}
