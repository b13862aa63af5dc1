package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/nations-cup/brackets"
	"github.com/Dosada05/nations-cup/services"
	"github.com/gorilla/websocket"
)

const clientSendBuffer = 256

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewWebSocketHandler accepts connections from any origin when allowedOrigins
// is empty or contains "*".
func NewWebSocketHandler(hub *brackets.Hub, ts services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
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

// ServeWs обрабатывает WebSocket запросы для конкретного турнира.
// Клиент подключается к /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.tournamentService.Get(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("websocket upgrade failed", slog.String("tournament_id", tournamentID.String()), slog.Any("error", err))
		return
	}

	roomID := brackets.RoomID(tournamentID.String())
	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, clientSendBuffer),
		Room: roomID,
	}
	if !h.hub.Join(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client joined", slog.String("room", roomID))
}
