package net

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FeedServer streams encounter snapshots to websocket spectators on /feed.
// Clients are added by HTTP handler goroutines; Broadcast is called from
// the game loop.
type FeedServer struct {
	listener net.Listener
	http     *http.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uint64]*Client
	nextID  atomic.Uint64

	outSize int
	log     *zap.Logger
}

// NewFeedServer binds bindAddr. An empty bindAddr creates a server that is
// only reachable through Handler.
func NewFeedServer(bindAddr string, outSize int, log *zap.Logger) (*FeedServer, error) {
	if outSize < 1 {
		outSize = 1
	}
	s := &FeedServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]*Client),
		outSize: outSize,
		log:     log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", s.handleFeed)
	s.http = &http.Server{Handler: mux}

	if bindAddr != "" {
		ln, err := net.Listen("tcp", bindAddr)
		if err != nil {
			return nil, err
		}
		s.listener = ln
	}
	return s, nil
}

// Serve runs in its own goroutine until Shutdown.
func (s *FeedServer) Serve() {
	if s.listener == nil {
		return
	}
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("feed server stopped", zap.Error(err))
	}
}

// Handler exposes the /feed route, for mounting or tests.
func (s *FeedServer) Handler() http.Handler {
	return s.http.Handler
}

func (s *FeedServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("feed upgrade failed", zap.Error(err))
		return
	}
	c := newClient(conn, s.nextID.Add(1), s.outSize, s.log)
	s.mu.Lock()
	s.clients[c.ID] = c
	s.mu.Unlock()
	c.Start()
	s.log.Info("spectator connected", zap.Uint64("client", c.ID), zap.String("ip", c.IP))
}

// Broadcast queues data for every connected client and forgets clients
// that have closed, including ones dropped for being slow.
func (s *FeedServer) Broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		c.Send(data)
		if c.IsClosed() {
			delete(s.clients, id)
		}
	}
}

// Clients is the number of connected spectators.
func (s *FeedServer) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Shutdown stops accepting spectators and closes the connected ones.
func (s *FeedServer) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.mu.Lock()
	for id, c := range s.clients {
		c.Close()
		delete(s.clients, id)
	}
	s.mu.Unlock()
	return err
}

// Addr returns the listener's address, or nil without one.
func (s *FeedServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
