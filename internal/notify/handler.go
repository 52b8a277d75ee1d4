package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone inbox de toasts, stream websocket y permiso de notificaciones.
// ctx acota la vida de las conexiones websocket (shutdown del proceso).
func RegisterRoutes(ctx context.Context, r chi.Router, hub *Hub, perm *Permission) {
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", listToastsHandler(hub))
		nr.Get("/ws", toastStreamHandler(ctx, hub))
		nr.Get("/permission", getPermissionHandler(perm))
		nr.Post("/permission", setPermissionHandler(perm))
	})
}

type permissionRequest struct {
	Granted *bool `json:"granted"`
}

type permissionResponse struct {
	State PermissionState `json:"state"`
}

// listToastsHandler godoc
// @Summary Toasts recientes
// @Description Últimos avisos in-app, el más nuevo primero.
// @Tags notifications
// @Produce json
// @Param limit query int false "Máximo de toasts (default 20)"
// @Success 200 {array} Toast
// @Router /notifications [get]
func listToastsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}
		writeJSON(w, http.StatusOK, hub.Recent(limit))
	}
}

// toastStreamHandler godoc
// @Summary Stream de toasts
// @Description Upgrade a websocket; cada toast llega como un mensaje JSON.
// @Tags notifications
// @Success 101
// @Router /notifications/ws [get]
func toastStreamHandler(ctx context.Context, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(ctx, w, r)
	}
}

// getPermissionHandler godoc
// @Summary Estado del permiso de notificaciones de sistema
// @Tags notifications
// @Produce json
// @Success 200 {object} permissionResponse
// @Router /notifications/permission [get]
func getPermissionHandler(perm *Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, permissionResponse{State: perm.State()})
	}
}

// setPermissionHandler godoc
// @Summary Conceder o denegar notificaciones de sistema
// @Tags notifications
// @Accept json
// @Produce json
// @Param payload body permissionRequest true "granted=true|false"
// @Success 200 {object} permissionResponse
// @Failure 400 {string} string "invalid json"
// @Router /notifications/permission [post]
func setPermissionHandler(perm *Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req permissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Granted == nil {
			http.Error(w, "invalid json: expected {\"granted\": true|false}", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, permissionResponse{State: perm.Set(*req.Granted)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
