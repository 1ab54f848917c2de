package telemetry

import (
	"context"
	"net/http"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/executor"
	"github.com/zishang520/socket.io/v2/socket"
)

// Path is where the server is mounted on the HTTP mux.
const Path = "/socket.io/"

// Server broadcasts frame reports to socket.io clients.
type Server struct {
	io *socket.Server
}

var _ executor.Observer = (*Server)(nil)

// NewServer creates a socket.io server. Mount Handler at Path.
func NewServer(ctx context.Context) *Server {
	logger := ctxlog.FromContext(ctx)
	io := socket.NewServer(nil, nil)
	io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		logger.Info("Telemetry client connected.", "sid", client.Id())
		client.On("disconnect", func(reason ...any) {
			logger.Debug("Telemetry client disconnected.", "sid", client.Id(), "reason", reason)
		})
	})
	return &Server{io: io}
}

// Handler returns the HTTP handler serving the socket.io endpoint.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// ObserveFrame broadcasts the report as a frame event.
func (s *Server) ObserveFrame(ctx context.Context, r *executor.Report) {
	ctxlog.FromContext(ctx).Debug("Emitting frame event.", "frame", r.Frame)
	s.io.Emit(EventFrame, Encode(r))
}

// Close disconnects every client.
func (s *Server) Close() {
	s.io.Close(nil)
}
