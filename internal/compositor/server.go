package compositor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/logger"
	"github.com/bnema/seatctl/internal/wire"
)

// Server exposes a Backend on a unix socket
type Server struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	backend    gateway.Backend
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	conns      map[net.Conn]struct{}
	running    bool
}

// NewServer creates a server for backend listening on socketPath
func NewServer(backend gateway.Backend, socketPath string) *Server {
	return &Server{
		socketPath: socketPath,
		backend:    backend,
		conns:      make(map[net.Conn]struct{}),
	}
}

// SocketPath returns the path the server listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start starts accepting connections
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// Remove a stale socket file left by a previous run
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	// Set socket permissions (user only)
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("Control socket listening at %s", s.socketPath)
	return nil
}

// Stop closes the listener and every open connection, then waits for handlers
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.listener.Close()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()

	os.RemoveAll(s.socketPath)
	logger.Info("Control socket stopped")
}

func (s *Server) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Errorf("Failed to accept connection: %v", err)
			continue
		}

		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.handleConnection(conn)
	}
}

// handleConnection processes requests in arrival order until the peer hangs up
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	logger.Debug("New control connection established")

	for {
		msg, err := wire.ReadMessage(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Debugf("Control connection closed: %v", err)
			}
			return
		}

		reply := s.handleMessage(msg)
		if reply == nil {
			continue
		}
		if err := wire.WriteMessage(conn, reply); err != nil {
			logger.Errorf("Failed to send reply: %v", err)
			return
		}
	}
}

// handleMessage applies one request. Only sync produces a reply; change
// requests are fire-and-forget and failures are logged.
func (s *Server) handleMessage(msg *wire.Message) *wire.Message {
	var err error
	switch msg.Kind {
	case wire.KindSync:
		snap, err := s.backend.Sync(context.Background())
		if err != nil {
			return wire.NewErrorMessage(err.Error())
		}
		return wire.NewSnapshotMessage(snap)

	case wire.KindAcceptance:
		err = s.backend.NotifyAcceptanceChange(msg.Seat, msg.Surface, msg.Accepted)

	case wire.KindFocus:
		err = s.backend.NotifyFocusChange(msg.Surface, msg.Mask, msg.Set)

	case wire.KindFocusAtomic:
		err = s.backend.NotifyFocusAtomic(msg.Dst, msg.Src, msg.Mask)

	default:
		err = fmt.Errorf("unexpected message kind %q", msg.Kind)
	}

	if err != nil {
		logger.Warn("Rejected control request", "kind", msg.Kind, "err", err)
	}
	return nil
}
