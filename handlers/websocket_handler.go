package handlers

import (
	"log"
	"net/http"

	"github.com/Dosada05/tournament-draws/hub"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" or an
// empty list allows any origin.
func NewWebSocketHandler(h *hub.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeWs подписывает клиента на изменения сетки: /ws/draws/{drawID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	drawID := chi.URLParam(r, "drawID")
	if drawID == "" {
		http.Error(w, "Missing drawID", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил клиенту HTTP-ошибку
		log.Printf("Failed to upgrade connection for draw %s: %v", drawID, err)
		return
	}

	client := hub.NewClient(h.hub, conn, hub.RoomForDraw(drawID))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Printf("Client registered and pumps started for room %s.", client.Room())
}
