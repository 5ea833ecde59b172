package api

import (
	"katalog-mediow/internal/config"
	"katalog-mediow/internal/database"
	"katalog-mediow/internal/media"
	"katalog-mediow/internal/storage"
	"katalog-mediow/internal/websocket"
)

type Server struct {
	config  *config.Config
	store   *database.Store
	storage *storage.MediaStorage
	media   *media.Service
	hub     *websocket.Hub
}

func NewServer(cfg *config.Config, store *database.Store, storage *storage.MediaStorage, mediaService *media.Service, hub *websocket.Hub) *Server {
	return &Server{
		config:  cfg,
		store:   store,
		storage: storage,
		media:   mediaService,
		hub:     hub,
	}
}
