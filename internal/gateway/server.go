package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HealthReporter supplies the /healthz payload.
type HealthReporter interface {
	Report() map[string]any
}

// Server is the HTTP front: the websocket upgrade endpoint, a health probe,
// and a REST view of the latest snapshots.
type Server struct {
	addr string
	hub  *Hub
	hr   HealthReporter

	writeTimeout time.Duration
	pingInterval time.Duration
	pongTimeout  time.Duration

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer wires the routes. The upgrader accepts any origin; this service
// sits behind its own ingress.
func NewServer(addr string, hub *Hub, hr HealthReporter, writeTimeout, pingInterval, pongTimeout time.Duration) *Server {
	s := &Server{
		addr:         addr,
		hub:          hub,
		hr:           hr,
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/ws", s.handleWS)
	router.GET("/healthz", s.handleHealth)
	router.GET("/api/latest", s.handleLatest)

	s.httpSrv = &http.Server{Addr: addr, Handler: router}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// every websocket client.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[gateway] listening on %s", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.httpSrv.Shutdown(shutdownCtx)
	s.hub.CloseAll()
	<-errCh
	return err
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[gateway] upgrade: %v", err)
		return
	}

	client := NewClient(conn, s.hub, s.writeTimeout, s.pingInterval, s.pongTimeout)
	s.hub.Register(client)
	go client.PingLoop()
	go client.ReadLoop()
}

func (s *Server) handleHealth(c *gin.Context) {
	report := map[string]any{"status": "ok"}
	if s.hr != nil {
		report = s.hr.Report()
	}
	c.JSON(http.StatusOK, report)
}

// handleLatest returns the stored latest snapshot per series. ?symbol= may
// repeat to filter.
func (s *Server) handleLatest(c *gin.Context) {
	symbols := c.QueryArray("symbol")
	payloads := s.hub.Latest(symbols)

	items := make([]json.RawMessage, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, json.RawMessage(p))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "snapshots": items})
}
