package api

import (
	"log"
	"net/http"

	"katalog-mediow/internal/auth"
	"katalog-mediow/internal/websocket"
)

// ServeWsHandler upgrades the connection to a websocket for the live
// catalog feed. Browsers cannot set an Authorization header on a websocket
// handshake, so the JWT travels in the token query parameter.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, "Token query parameter required", http.StatusUnauthorized)
		return
	}

	claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(s.hub, conn, claims.UserID)
	s.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.GetPool().Ping(r.Context()); err != nil {
		http.Error(w, "Database unreachable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
