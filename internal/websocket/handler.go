package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
	"github.com/dukerupert/mealplan/internal/auth"
)

// HandleWebSocket upgrades an authenticated request and streams the caller's
// snapshot notifications until the connection closes.
func HandleWebSocket(hub *Hub, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.logger.Warn("websocket accept failed", "error", err, "user_id", userID)
			return
		}

		hub.logger.Debug("websocket connected", "user_id", userID)
		NewClient(hub, conn, userID).Run(r.Context())
		hub.logger.Debug("websocket disconnected", "user_id", userID)
	}
}

