package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/sta4888/TZL/internal/ctrl"
	"go.uber.org/zap"
)

// acceptTimeout bounds every Accept call so a shutdown is observed
// without waiting for the next connection.
const acceptTimeout = 500 * time.Millisecond

type Handler struct {
	ctrl ctrl.AppCtrl
	ln   *net.TCPListener
	done chan struct{}
}

func New(ctrl ctrl.AppCtrl) *Handler {
	return &Handler{
		ctrl: ctrl,
		done: make(chan struct{}),
	}
}

// Start binds the listener and accepts connections until Close is
// called. A bind failure is fatal. Handlers run one goroutine per
// connection and are not awaited on shutdown.
func (h *Handler) Start(host string, port int) {
	addr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		zap.L().Fatal("Failed to resolve listen address", zap.Error(err))
	}

	h.ln, err = net.ListenTCP("tcp", addr)
	if err != nil {
		zap.L().Fatal("Failed to bind listener", zap.String("addr", addr.String()), zap.Error(err))
	}

	zap.L().Info("Server started", zap.String("addr", h.ln.Addr().String()))

	for {
		select {
		case <-h.done:
			return
		default:
		}

		if err = h.ln.SetDeadline(time.Now().Add(acceptTimeout)); err != nil {
			zap.L().Error("Failed to set accept deadline", zap.Error(err))
			return
		}

		conn, err := h.ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-h.done:
				return
			default:
			}
			zap.L().Error("Failed to accept connection", zap.Error(err))
			continue
		}

		go h.handleConn(conn)
	}
}

func (h *Handler) Close() error {
	close(h.done)
	if h.ln != nil {
		return h.ln.Close()
	}
	return nil
}
