// Package broadcast streams rendered spectrum frames to websocket clients.
package broadcast

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

// Path is the websocket endpoint.
const Path = "/ws"

const (
	queueSize    = 16
	clientBuffer = 8
	writeTimeout = time.Second
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("broadcaster closed")

// Config configures the broadcaster.
type Config struct {
	// Address is the TCP listen address; port 0 picks a free one.
	Address string

	// MaxRate caps frames per second sent to clients; 0 sends every frame.
	MaxRate int
}

// Message is the JSON body of one frame.
type Message struct {
	Mode      string `json:"mode"`
	Idle      bool   `json:"idle"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Bins      []int  `json:"bins"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Broadcaster subscribes to rendered frames and fans them out to every
// connected websocket client. Slow clients miss frames rather than holding
// up the render loop.
//
// Thread-safety: This implementation is thread-safe.
type Broadcaster struct {
	logger   *slog.Logger
	bus      ports.EventBus
	cfg      Config
	upgrader websocket.Upgrader

	frames chan Message
	stop   chan struct{}
	last   atomic.Int64

	mu       sync.Mutex
	clients  map[*client]struct{}
	server   *http.Server
	listener net.Listener
	subID    domain.SubscriptionID
	started  bool
	closed   bool

	wg sync.WaitGroup
}

// New creates a broadcaster. Nothing listens until Start.
func New(logger *slog.Logger, bus ports.EventBus, cfg Config) *Broadcaster {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Broadcaster{
		logger: logger.With(slog.String("component", "broadcast")),
		bus:    bus,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// local visualizer clients only
			CheckOrigin: func(*http.Request) bool { return true },
		},
		frames:  make(chan Message, queueSize),
		stop:    make(chan struct{}),
		clients: make(map[*client]struct{}),
	}
}

// Start listens on the configured address and begins forwarding frames.
func (b *Broadcaster) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if b.started {
		return nil
	}

	ln, err := net.Listen("tcp", b.cfg.Address)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.HandleFunc(Path, b.handleWebSocket)
	b.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	b.listener = ln
	b.started = true

	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		if err := b.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Error("websocket server stopped", slog.Any("error", err))
		}
	}()
	go b.fanOut()

	b.subID = b.bus.Subscribe(domain.EventFrameRendered, b.onFrame)
	b.logger.Info("spectrum broadcaster listening", slog.String("address", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (b *Broadcaster) Addr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// onFrame runs on the render loop goroutine and must not block.
func (b *Broadcaster) onFrame(event domain.Event) {
	e, ok := event.(domain.FrameRenderedEvent)
	if !ok {
		return
	}
	if b.cfg.MaxRate > 0 {
		now := time.Now().UnixNano()
		if now-b.last.Load() < int64(time.Second)/int64(b.cfg.MaxRate) {
			return
		}
		b.last.Store(now)
	}

	bins := make([]int, len(e.Snapshot))
	for i, v := range e.Snapshot {
		bins[i] = int(v)
	}
	msg := Message{Mode: string(e.Mode), Idle: e.Idle, ElapsedMS: e.Elapsed.Milliseconds(), Bins: bins}

	select {
	case b.frames <- msg:
	case <-b.stop:
	default:
		// queue full: drop the frame
	}
}

func (b *Broadcaster) fanOut() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		case msg := <-b.frames:
			data, err := json.Marshal(msg)
			if err != nil {
				b.logger.Error("failed to encode frame", slog.Any("error", err))
				continue
			}
			b.mu.Lock()
			for c := range b.clients {
				select {
				case c.send <- data:
				default:
				}
			}
			b.mu.Unlock()
		}
	}
}

func (b *Broadcaster) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = conn.Close()
		return
	}
	b.clients[c] = struct{}{}
	n := len(b.clients)
	b.wg.Add(2)
	b.mu.Unlock()

	b.logger.Debug("client connected", slog.String("remote", r.RemoteAddr), slog.Int("clients", n))
	go b.writeLoop(c)
	go b.readLoop(c)
}

func (b *Broadcaster) writeLoop(c *client) {
	defer b.wg.Done()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			b.drop(c)
			return
		}
	}
}

// readLoop discards client messages and notices disconnects.
func (b *Broadcaster) readLoop(c *client) {
	defer b.wg.Done()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			b.drop(c)
			return
		}
	}
}

func (b *Broadcaster) drop(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
	_ = c.conn.Close()
}

// Close disconnects every client, stops the server and waits for all
// goroutines. Safe to call more than once.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	started, server, subID := b.started, b.server, b.subID
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()

	if started {
		b.bus.Unsubscribe(subID)
	}
	close(b.stop)

	var err error
	if server != nil {
		err = server.Close()
	}
	for _, c := range clients {
		_ = c.conn.Close()
	}
	b.wg.Wait()
	b.logger.Debug("spectrum broadcaster closed")
	return err
}
