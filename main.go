package main

import (
	auth "Trestle/internal/auth"
	catalog "Trestle/internal/catalog"
	design "Trestle/internal/design"
	geometry "Trestle/internal/geometry"
	report "Trestle/internal/report"
	repo "Trestle/internal/repo"
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func registerRoutes(router *mux.Router, db *sql.DB) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	tokenKey := os.Getenv("TOKEN_KEY")
	if tokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}

	userRepo := repo.NewPostgresUserDB(db)
	designRepo := repo.NewPostgresDesignDB(db)
	catalogRepo := catalog.NewPostgresCatalog(db)

	bounds := geometry.DefaultBounds()
	authEnv := &auth.Authenv{JWTKey: []byte(tokenKey), Repo: userRepo}
	catalogH := &catalog.Handler{Cache: catalog.NewCache(catalogRepo), Repo: catalogRepo}
	geometryH := &geometry.Handler{Bounds: bounds}
	designH := &design.Handler{Repo: designRepo, Bounds: bounds}
	reportH := &report.Handler{Bounds: bounds}

	limiter := auth.NewIPRateLimiter(1, 5)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/login", authEnv.LoginHandler).Methods("POST")

	api.HandleFunc("/locations", catalogH.Locations).Methods("GET")
	api.HandleFunc("/locations/lookup", catalogH.Lookup).Methods("GET")
	api.HandleFunc("/materials", catalogH.Materials).Methods("GET")
	api.HandleFunc("/custom-loading", catalogH.CustomLoading).Methods("POST")

	api.HandleFunc("/geometry/validate", geometryH.Validate).Methods("POST")

	secureAPI := api.PathPrefix("/user").Subrouter()
	secureAPI.Use(authEnv.Middleware)

	secureAPI.HandleFunc("/designs", designH.Save).Methods("POST")
	secureAPI.HandleFunc("/designs", designH.List).Methods("GET")
	secureAPI.HandleFunc("/designs/{id:[0-9]+}", designH.Get).Methods("GET")
	secureAPI.HandleFunc("/report/pdf", reportH.Generate).Methods("POST")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db := auth.InitDB()
	defer db.Close()

	router := mux.NewRouter()
	registerRoutes(router, db)
	handler := CORS(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	log.Println("Starting server on :" + port)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, closing active connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")

	wg.Wait()
}
