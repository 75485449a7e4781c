// Package server accepts viewer connections and broadcasts rendered pages
// to every connected session over WebSocket. Each broadcast sends a JSON
// header frame followed by one binary RGBA frame per page; sessions whose
// transport fails are pruned after the broadcast pass completes.
package server

import (
	"context"
	"errors"
	"image"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	folioerrors "github.com/folio-dev/folio/internal/errors"
	"github.com/folio-dev/folio/internal/logging"
)

// PreviewServer owns the set of connected viewer sessions. The accept loop
// and the recompilation loop both mutate the set, so every access goes
// through the mutex; the set is never mutated while being iterated.
type PreviewServer struct {
	writeTimeout time.Duration
	logger       logging.Logger

	mu       sync.Mutex
	sessions []*Session

	httpServer *http.Server
	listener   net.Listener
}

// Session is one connected viewer. Owned exclusively by the server's
// session set: created on accept, removed on first send failure or close.
type Session struct {
	conn   *websocket.Conn
	remote string
}

// Remote returns the peer address, for logging.
func (s *Session) Remote() string {
	return s.remote
}

// New creates a preview server.
func New(writeTimeout time.Duration, logger logging.Logger) *PreviewServer {
	if logger == nil {
		logger = logging.Nop()
	}
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}
	return &PreviewServer{
		writeTimeout: writeTimeout,
		logger:       logger.WithComponent("server"),
	}
}

// Listen binds the listen address and starts accepting viewer connections
// until the context is cancelled.
func (s *PreviewServer) Listen(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.logger.Info(ctx, "listening for viewers", "addr", listener.Addr().String())

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleViewer)
	s.httpServer = &http.Server{Handler: mux, BaseContext: func(net.Listener) context.Context { return ctx }}

	go func() {
		<-ctx.Done()
		_ = s.httpServer.Close()
	}()

	err = s.httpServer.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound listen address, valid after Listen has bound it.
func (s *PreviewServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *PreviewServer) handleViewer(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Viewers are local tooling, not browsers with ambient credentials.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Error(r.Context(), err, "websocket upgrade failed")
		return
	}

	session := &Session{conn: conn, remote: r.RemoteAddr}

	// Drain incoming frames so control messages are processed; viewers
	// only receive.
	conn.CloseRead(context.Background())

	s.mu.Lock()
	s.sessions = append(s.sessions, session)
	count := len(s.sessions)
	s.mu.Unlock()

	s.logger.Info(r.Context(), "viewer connected", "remote", session.remote, "total", count)
}

// SessionCount returns the number of live sessions.
func (s *PreviewServer) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Broadcast sends the page sequence to every connected session. Within one
// session the header frame precedes all page frames and all pages of one
// broadcast precede any frame of the next. A failed session is marked and
// removed after the pass over all sessions completes; sessions connecting
// mid-broadcast only receive subsequent broadcasts.
//
// Writes happen on a snapshot of the session set taken under the mutex, so
// a stalled viewer transport never blocks new viewers from connecting.
func (s *PreviewServer) Broadcast(ctx context.Context, pages []*image.RGBA) {
	if len(pages) == 0 {
		return
	}

	header, err := EncodeHeader(pages)
	if err != nil {
		s.logger.Error(ctx, err, "failed to encode broadcast header")
		return
	}

	s.mu.Lock()
	sessions := make([]*Session, len(s.sessions))
	copy(sessions, s.sessions)
	s.mu.Unlock()

	s.logger.Info(ctx, "broadcasting render", "pages", len(pages), "viewers", len(sessions))

	var failed []*Session
	for _, session := range sessions {
		if err := s.sendTo(ctx, session, header, pages); err != nil {
			s.logger.Warn(ctx, err, "dropping viewer", "remote", session.remote)
			failed = append(failed, session)
		}
	}

	if len(failed) > 0 {
		s.prune(failed)
	}
}

func (s *PreviewServer) sendTo(ctx context.Context, session *Session, header []byte, pages []*image.RGBA) error {
	if err := s.write(ctx, session, websocket.MessageText, header); err != nil {
		return &folioerrors.TransportError{Session: session.remote, Cause: err}
	}
	for _, page := range pages {
		if err := s.write(ctx, session, websocket.MessageBinary, PagePayload(page)); err != nil {
			return &folioerrors.TransportError{Session: session.remote, Cause: err}
		}
	}
	return nil
}

func (s *PreviewServer) write(ctx context.Context, session *Session, kind websocket.MessageType, data []byte) error {
	// A hung viewer transport must not block its own removal forever.
	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return session.conn.Write(writeCtx, kind, data)
}

// prune removes the given sessions from the set. Matching is by session
// identity, so sessions accepted while the broadcast pass ran keep their
// place.
func (s *PreviewServer) prune(failed []*Session) {
	drop := make(map[*Session]bool, len(failed))
	for _, session := range failed {
		drop[session] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sessions[:0]
	for _, session := range s.sessions {
		if drop[session] {
			_ = session.conn.Close(websocket.StatusGoingAway, "send failed")
			continue
		}
		kept = append(kept, session)
	}
	s.sessions = kept
}

// Close disconnects every session and stops the listener.
func (s *PreviewServer) Close() error {
	s.mu.Lock()
	for _, session := range s.sessions {
		_ = session.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
	s.sessions = nil
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}
