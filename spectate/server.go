package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 20 * time.Second
)

var boardTemplate = template.Must(template.New("board").Parse(`<!DOCTYPE html>
<html>
<head><title>snek3d turn {{.Frame.Turn}}</title></head>
<body>
<p id="status">turn <span id="turn">{{.Frame.Turn}}</span> round <span id="round">{{.Frame.Round}}</span> length <span id="length">{{len .Frame.Body}}</span> eaten <span id="eaten">{{.Frame.Eaten}}</span> deaths <span id="deaths">{{.Frame.Deaths}}</span></p>
<table id="board">
{{range .Rows}}<tr>{{range .}}<td class="{{.}}"></td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

// Server exposes a Hub over HTTP:
//
//	GET /api/state  latest frame as JSON
//	GET /board      latest frame as an HTML table
//	GET /ws         websocket stream of frame events
type Server struct {
	hub      *Hub
	logger   *slog.Logger
	engine   *gin.Engine
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Read-only view; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.SetHTMLTemplate(boardTemplate)
	r.GET("/api/state", s.handleState)
	r.GET("/board", s.handleBoard)
	r.GET("/ws", s.handleWS)
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("spectate server listening", slog.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("spectate request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("took", time.Since(start)),
	)
}

func (s *Server) handleState(c *gin.Context) {
	f, ok := s.hub.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no frame published yet"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleBoard(c *gin.Context) {
	f, ok := s.hub.Latest()
	if !ok {
		c.String(http.StatusNotFound, "no frame published yet")
		return
	}
	c.HTML(http.StatusOK, "board", gin.H{"Frame": f, "Rows": f.Cells()})
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	frames, stop := s.hub.Subscribe(16)
	defer stop()

	// Spectators never send anything; reading only notices the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if f, ok := s.hub.Latest(); ok {
		if err := writeFrame(conn, f); err != nil {
			return
		}
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := writeFrame(conn, f); err != nil {
				s.logger.Debug("spectator dropped", slog.Any("error", err))
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(Event{Type: EventFrame, Data: data})
}
