package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades requests to WebSocket connections served by hub.
// allowedOrigins uses the same values as the CORS configuration; "*" accepts
// any origin.
func HandleWebSocket(hub *Hub, allowedOrigins []string, logger *slog.Logger) http.HandlerFunc {
	opts := acceptOptions(allowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		// Server read/write timeouts would otherwise carry over to the
		// hijacked connection.
		rc := http.NewResponseController(w)
		rc.SetReadDeadline(time.Time{})
		rc.SetWriteDeadline(time.Time{})

		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		NewClient(hub, conn).Run(r.Context())
	}
}

func acceptOptions(origins []string) *ws.AcceptOptions {
	opts := &ws.AcceptOptions{}
	for _, o := range origins {
		if o == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			opts.OriginPatterns = append(opts.OriginPatterns, u.Host)
		} else {
			opts.OriginPatterns = append(opts.OriginPatterns, o)
		}
	}
	return opts
}
