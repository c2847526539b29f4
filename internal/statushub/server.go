package statushub

import (
	"context"
	"io/fs"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Server is the status hub's HTTP/WebSocket endpoint, optionally also
// serving a bundled UI from uiFS.
type Server struct {
	hub         *Hub
	broadcaster *Broadcaster
	uiFS        fs.FS
	addr        string
	httpServer  *http.Server
	logger      *log.Logger
}

// New creates a Server. uiFS may be nil to serve only the /ws endpoint.
func New(h *Hub, b *Broadcaster, uiFS fs.FS, addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{hub: h, broadcaster: b, uiFS: uiFS, addr: addr, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // local-only use
}

// ListenAndServe blocks serving the /ws endpoint (and the UI, if
// configured) until Shutdown is called.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.uiFS != nil {
		mux.Handle("/", http.FileServer(http.FS(s.uiFS)))
	}

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}
	s.logger.Printf("status hub listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Println("status hub shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.Register(client)
	s.broadcaster.SendInitialState(client)

	go client.WritePump()
	go client.ReadPump()
}
