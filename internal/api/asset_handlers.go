package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"katalog-mediow/internal/media"
	"katalog-mediow/internal/models"
	"katalog-mediow/internal/websocket"

	"github.com/go-chi/chi/v5"
)

// AssetRoutes mounts the full handler set for a single media kind, so
// /photos and /videos share one implementation.
func (s *Server) AssetRoutes(kind models.Kind) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", s.ListAssetsHandler(kind))
		r.Get("/user/{userId}", s.ListAssetsByUserHandler(kind))
		r.Get("/{assetId}", s.GetAssetHandler(kind))

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Post("/", s.CreateAssetHandler(kind))
			r.Patch("/{assetId}", s.UpdateAssetHandler(kind))
			r.Delete("/", s.DeleteAssetsHandler(kind))
		})
	}
}

func (s *Server) ListAssetsHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Niepoprawne wartości wracają do domyślnych zamiast błędu 400
		offset := 0
		limit := 0
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
			offset = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			limit = v
		}

		result, err := s.media.List(r.Context(), kind, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list assets", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func (s *Server) ListAssetsByUserHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}

		assets, err := s.media.ListByOwner(r.Context(), kind, userID)
		if err != nil {
			http.Error(w, "Failed to list assets", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(assets)
	}
}

func (s *Server) GetAssetHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := strconv.ParseInt(chi.URLParam(r, "assetId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid asset ID", http.StatusBadRequest)
			return
		}

		asset, err := s.media.Get(r.Context(), kind, assetID)
		if err != nil {
			if errors.Is(err, media.ErrNotFound) {
				http.Error(w, "Asset not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to get asset", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(asset)
	}
}

func (s *Server) CreateAssetHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r.Context())
		if claims == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if cfg, ok := s.media.KindConfig(kind); ok {
			// Zapas na pola formularza poza samym plikiem
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBytes+1<<20)
		}

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "Uploaded file is too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		defer file.Close()

		fields := media.AssetFields{
			Title:           r.FormValue("title"),
			Description:     optionalFormValue(r, "description"),
			FullDescription: optionalFormValue(r, "full_description"),
		}

		meta := media.FileMeta{
			Filename:    header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		}

		asset, err := s.media.Create(r.Context(), kind, claims.Principal(), fields, file, meta)
		if err != nil {
			respondMediaError(w, err)
			return
		}

		s.hub.BroadcastEvent(websocket.AssetEvent{
			Type: websocket.EventAssetCreated,
			Kind: kind,
			IDs:  []int64{asset.ID},
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(asset)
	}
}

type updateAssetRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	FullDescription *string `json:"full_description"`
}

func (s *Server) UpdateAssetHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r.Context())
		if claims == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		assetID, err := strconv.ParseInt(chi.URLParam(r, "assetId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid asset ID", http.StatusBadRequest)
			return
		}

		var req updateAssetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		asset, err := s.media.Update(r.Context(), kind, claims.Principal(), assetID, media.AssetUpdate{
			Title:           req.Title,
			Description:     req.Description,
			FullDescription: req.FullDescription,
		})
		if err != nil {
			respondMediaError(w, err)
			return
		}

		s.hub.BroadcastEvent(websocket.AssetEvent{
			Type: websocket.EventAssetUpdated,
			Kind: kind,
			IDs:  []int64{asset.ID},
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(asset)
	}
}

type deleteAssetsRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) DeleteAssetsHandler(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r.Context())
		if claims == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req deleteAssetsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		deletedIDs, err := s.media.Delete(r.Context(), kind, claims.Principal(), req.IDs)
		if err != nil {
			respondMediaError(w, err)
			return
		}

		if len(deletedIDs) > 0 {
			s.hub.BroadcastEvent(websocket.AssetEvent{
				Type: websocket.EventAssetsDeleted,
				Kind: kind,
				IDs:  deletedIDs,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]int64{"deleted_ids": deletedIDs})
	}
}

// respondMediaError translates service errors into HTTP statuses. The
// ForbiddenError message deliberately names the offending asset ID.
func respondMediaError(w http.ResponseWriter, err error) {
	var validationErr *media.ValidationError
	var forbiddenErr *media.ForbiddenError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &forbiddenErr):
		http.Error(w, forbiddenErr.Error(), http.StatusForbidden)
	case errors.Is(err, media.ErrForbidden):
		http.Error(w, "Access denied", http.StatusForbidden)
	case errors.Is(err, media.ErrNotFound):
		http.Error(w, "Asset not found", http.StatusNotFound)
	case errors.Is(err, media.ErrMissingFile):
		http.Error(w, "No file uploaded", http.StatusBadRequest)
	case errors.Is(err, media.ErrUnsupportedMediaType):
		http.Error(w, "Unsupported media type", http.StatusUnsupportedMediaType)
	case errors.Is(err, media.ErrPayloadTooLarge):
		http.Error(w, "Uploaded file is too large", http.StatusRequestEntityTooLarge)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func optionalFormValue(r *http.Request, key string) *string {
	if v := r.FormValue(key); v != "" {
		return &v
	}
	return nil
}
