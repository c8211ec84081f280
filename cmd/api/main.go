package main

import (
	"fmt"
	"log"
	"minera/cmd/app"
	"minera/internal/config"
	"minera/internal/database"
	handlers "minera/internal/handler"
	"minera/internal/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY не установлен в .env файле")
	}

	db, _, services := app.App(cfg)
	defer database.MethodsDB.CloseDB(db)

	handler := handlers.NewHandlers(services, cfg)

	router := mux.NewRouter()

	// setting up routes
	router.HandleFunc("/", handlers.HomeHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", handlers.HealthHandler).Methods(http.MethodGet)

	// эндпоинты расширения (аутентификация по токену расширения)
	router.HandleFunc("/api/extension/validate-token", handler.ValidateToken).Methods(http.MethodPost)
	router.HandleFunc("/api/extension/receive-ad", handler.ReceiveAd).Methods(http.MethodPost)

	// прокси скачивания медиа
	router.HandleFunc("/api/media/download", handler.DownloadMedia).Methods(http.MethodPost)

	// эндпоинты панели (JWT)
	router.HandleFunc("/api/token", handler.GetToken).Methods(http.MethodGet)
	router.HandleFunc("/api/token/regenerate", handler.RegenerateToken).Methods(http.MethodPost)
	router.HandleFunc("/api/ads", handler.GetAds).Methods(http.MethodGet)
	router.HandleFunc("/api/ads/stats", handler.GetAdStats).Methods(http.MethodGet)
	router.HandleFunc("/api/ads/favorite", handler.ToggleFavorite).Methods(http.MethodPost)
	router.HandleFunc("/api/ads/{id:[0-9]+}", handler.DeleteAd).Methods(http.MethodDelete)

	handlerChain := middleware.Chain(
		router,
		middleware.LoggingMiddleware,
		middleware.CORSMiddleware,
		middleware.AuthMiddleware(cfg),
	)

	// Starting the server
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	fmt.Printf("Сервер запущен на %s\n", addr)
	fmt.Printf("База данных: %s\n", cfg.DB.DbNAME)

	if err := http.ListenAndServe(addr, handlerChain); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
