package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"LeapPaint/internal/stroke"
)

// StrokesPath is the websocket endpoint viewers connect to.
const StrokesPath = "/strokes"

const (
	sendQueue    = 64
	writeTimeout = 2 * time.Second
)

// Peer is a connected viewer.
type Peer struct {
	conn *websocket.Conn
	addr string
	send chan []byte
	once sync.Once
}

func (p *Peer) close() {
	p.once.Do(func() {
		close(p.send)
	})
}

// PeerManager accepts viewer connections and fans messages out to them.
// Sends never block the caller: each peer has its own queue and writer, and a
// peer whose queue is full misses the message.
type PeerManager struct {
	peers    map[string]*Peer
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

func NewPeerManager() *PeerManager {
	return &PeerManager{
		peers: make(map[string]*Peer),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (pm *PeerManager) add(p *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.peers[p.addr] = p
	stroke.Logger().Info("viewer connected", "component", "bridge", "addr", p.addr)
}

func (pm *PeerManager) remove(p *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.peers[p.addr] == p {
		delete(pm.peers, p.addr)
	}
	p.close()
	stroke.Logger().Info("viewer disconnected", "component", "bridge", "addr", p.addr)
}

// Len returns the number of connected viewers.
func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Broadcast queues data for every viewer.
func (pm *PeerManager) Broadcast(data []byte) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for addr, p := range pm.peers {
		select {
		case p.send <- data:
		default:
			stroke.Logger().Warn("viewer too slow; message dropped", "component", "bridge", "addr", addr)
		}
	}
}

// ServeHTTP upgrades the request to a websocket and serves the viewer until
// it disconnects.
func (pm *PeerManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := pm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		stroke.Logger().Warn("websocket upgrade failed", "component", "bridge", "error", err)
		return
	}
	p := &Peer{conn: conn, addr: conn.RemoteAddr().String(), send: make(chan []byte, sendQueue)}
	pm.add(p)
	go pm.writeLoop(p)

	defer conn.Close()
	defer pm.remove(p)
	for {
		// Viewers only listen; reading detects the close.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (pm *PeerManager) writeLoop(p *Peer) {
	for data := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			stroke.Logger().Warn("send to viewer failed", "component", "bridge", "addr", p.addr, "error", err)
			p.conn.Close()
			return
		}
	}
}

// Close disconnects every viewer.
func (pm *PeerManager) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for addr, p := range pm.peers {
		p.conn.Close()
		p.close()
		delete(pm.peers, addr)
	}
}

// Serve runs the bridge HTTP server on port until ctx is done.
func Serve(ctx context.Context, port int, pm *PeerManager) error {
	mux := http.NewServeMux()
	mux.Handle(StrokesPath, pm)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		stroke.Logger().Info("bridge listening", "component", "bridge", "port", port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve bridge: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		pm.Close()
		return srv.Shutdown(shutdownCtx)
	}
}
