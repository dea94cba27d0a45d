package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"canvasroom/internal/application/client"
	"canvasroom/internal/application/gateway"
	"canvasroom/internal/application/hub"
	"canvasroom/internal/application/updater"
)

type WsServer struct {
	Updater *websocket.Upgrader
	Hub     *hub.Hub
	Gateway *gateway.Gateway
	Mux     *http.ServeMux
	Srv     *http.Server
	Log     *zap.Logger

	healthCheck func(context.Context) error
	staticDir   string
}

func NewWsServer(h *hub.Hub, gw *gateway.Gateway, addr string, origins []string, staticDir string, healthCheck func(context.Context) error, log *zap.Logger) *WsServer {
	mux := http.NewServeMux()
	return &WsServer{
		Updater: updater.NewUpdater(origins),
		Hub:     h,
		Gateway: gw,
		Mux:     mux,
		Srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		Log:         log,
		healthCheck: healthCheck,
		staticDir:   staticDir,
	}
}

func (ws *WsServer) Start() error {
	ws.Mux.HandleFunc("/ws", ws.WebSocketHandler)
	ws.Mux.HandleFunc("/healthz", ws.HealthHandler)
	if ws.staticDir != "" {
		ws.Mux.Handle("/", http.FileServer(http.Dir(ws.staticDir)))
	}
	return ws.Srv.ListenAndServe()
}

func (ws *WsServer) Stop(ctx context.Context) error {
	return ws.Srv.Shutdown(ctx)
}

func (ws *WsServer) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := ws.healthCheck(r.Context()); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (ws *WsServer) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Updater.Upgrade(w, r, nil)
	if err != nil {
		ws.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client.Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
		Log:  ws.Log,
	}
	ws.Hub.Add(c)

	welcome, _ := json.Marshal(gateway.WelcomeEvent{ClientID: c.ID})
	if err := conn.WriteJSON(gateway.Envelope{Type: gateway.EvtWelcome, Data: welcome}); err != nil {
		ws.Log.Warn("failed to send welcome", zap.String("id", c.ID), zap.Error(err))
	}

	go c.WritePump()
	go func() {
		c.ReadPump(ws.Gateway.Dispatch)
		// Connection gone: resolve membership before dropping the
		// send channel.
		ws.Gateway.HandleDisconnect(c)
		ws.Hub.Remove(c)
	}()
}
