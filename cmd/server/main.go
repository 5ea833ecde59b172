package main

import (
	"context"
	"log"
	"net/http"

	"katalog-mediow/internal/api"
	"katalog-mediow/internal/config"
	"katalog-mediow/internal/database"
	"katalog-mediow/internal/media"
	"katalog-mediow/internal/models"
	"katalog-mediow/internal/storage"
	"katalog-mediow/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Nie można wczytać konfiguracji: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Nie można połączyć się z bazą danych: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Nie można pingować bazy danych: %v", err)
	}
	log.Println("Pomyślnie połączono z bazą danych")

	mediaStorage, err := storage.NewMediaStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Nie można zainicjować magazynu plików: %v", err)
	}
	log.Printf("Pliki będą przechowywane w: %s", cfg.Storage.Path)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool)
	mediaService := media.NewService(store, mediaStorage, media.KindConfigs(cfg.Uploads))
	server := api.NewServer(cfg, store, mediaStorage, mediaService, wsHub)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/ws", server.ServeWsHandler)

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(mediaStorage.BasePath()))))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", server.LoginHandler)
		r.Post("/auth/refresh", server.RefreshTokenHandler)
		r.Post("/auth/logout", server.LogoutHandler)

		r.Route("/photos", server.AssetRoutes(models.KindPhoto))
		r.Route("/videos", server.AssetRoutes(models.KindVideo))

		r.Group(func(r chi.Router) {
			r.Use(server.AuthMiddleware)
			r.Get("/me", server.GetCurrentUserHandler)
			r.Get("/me/sessions", server.ListMySessionsHandler)
			r.Patch("/users/me/password", server.ChangePasswordHandler)

			r.Group(func(r chi.Router) {
				r.Use(server.RequireAdmin)
				r.Get("/users", server.ListUsersHandler)
				r.Post("/users", server.CreateUserHandler)
				r.Delete("/users/{userId}", server.DeleteUserHandler)
				r.Patch("/users/{userId}/reset-password", server.ResetPasswordHandler)
			})
		})
	})

	log.Println("Uruchamianie serwera na porcie :8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}
