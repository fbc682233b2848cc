package link

import (
	"context"
	"encoding/binary"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64,
	WriteBufferSize: 64,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocket links two players over a network. The listening side is the
// master.
type WebSocket struct {
	id     int
	inbox  Ring
	send   chan uint16
	active atomic.Bool

	mu        sync.Mutex
	peer      *peer
	closed    bool
	connected atomic.Bool
	pumps     sync.WaitGroup

	server *http.Server
	addr   string
}

// peer is one attached connection. done is closed when it detaches.
type peer struct {
	conn *websocket.Conn
	done chan struct{}
}

func newWebSocket(id int) *WebSocket {
	return &WebSocket{id: id, send: make(chan uint16, BufferSize)}
}

// Listen accepts a single peer on addr. It returns immediately; the link
// reports connected once the peer has joined. Another peer may join after
// the first one left.
func Listen(addr string) (*WebSocket, error) {
	ln, err := net.Listen("tcp", addr)
	if nil != err {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}

	w := newWebSocket(0)
	w.addr = ln.Addr().String()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(wr http.ResponseWriter, r *http.Request) {
		w.mu.Lock()
		defer w.mu.Unlock()

		if nil != w.peer || w.closed {
			http.Error(wr, "session full", http.StatusConflict)
			return
		}

		conn, err := upgrader.Upgrade(wr, r, nil)
		if nil != err {
			log.WithError(err).Warn("link upgrade failed")
			return
		}
		log.WithField("remote", r.RemoteAddr).Info("player joined")
		w.attach(conn)
	})
	w.server = &http.Server{Handler: mux}

	go func() {
		if err := w.server.Serve(ln); nil != err && err != http.ErrServerClosed {
			log.WithError(err).Error("link server stopped")
		}
	}()
	return w, nil
}

// Dial joins the session hosted at url.
func Dial(ctx context.Context, url string) (*WebSocket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if nil != err {
		return nil, errors.Wrapf(err, "joining %s", url)
	}

	w := newWebSocket(1)
	w.mu.Lock()
	w.attach(conn)
	w.mu.Unlock()
	return w, nil
}

// Addr is the address the master listens on.
func (w *WebSocket) Addr() string { return w.addr }

// attach starts the pumps for conn. w.mu must be held.
func (w *WebSocket) attach(conn *websocket.Conn) {
	p := &peer{conn: conn, done: make(chan struct{})}
	w.peer = p
	w.connected.Store(true)

	w.pumps.Add(2)
	go w.readPump(p)
	go w.writePump(p)
}

func (w *WebSocket) readPump(p *peer) {
	defer w.pumps.Done()
	defer w.detach(p)

	for {
		_, message, err := p.conn.ReadMessage()
		if nil != err {
			return
		}
		if len(message) != 2 || !w.active.Load() {
			continue
		}
		w.inbox.Push(binary.BigEndian.Uint16(message))
	}
}

func (w *WebSocket) writePump(p *peer) {
	defer w.pumps.Done()
	defer w.detach(p)

	var message [2]byte
	for {
		select {
		case <-p.done:
			return
		case data := <-w.send:
			binary.BigEndian.PutUint16(message[:], data)
			if err := p.conn.WriteMessage(websocket.BinaryMessage, message[:]); nil != err {
				return
			}
		}
	}
}

func (w *WebSocket) detach(p *peer) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.peer != p {
		return
	}
	close(p.done)
	p.conn.Close()
	w.peer = nil
	w.connected.Store(false)

	// words queued for this peer are not replayed to the next one
drain:
	for {
		select {
		case <-w.send:
		default:
			break drain
		}
	}
	log.WithField("player", w.id).Info("link disconnected")
}

func (w *WebSocket) IsConnected() bool {
	return w.active.Load() && w.connected.Load()
}

func (w *WebSocket) PlayerCount() int {
	if w.IsConnected() {
		return MaxPlayers
	}
	return 1
}

func (w *WebSocket) CurrentPlayerID() int { return w.id }

func (w *WebSocket) Send(data uint16) {
	if data == NoData || !w.IsConnected() {
		return
	}
	select {
	case w.send <- data:
	default:
		// a full queue drops the word like a busy cable would
	}
}

func (w *WebSocket) Read(playerID int) uint16 {
	if playerID == w.id {
		return NoData
	}
	return w.inbox.Pop()
}

func (w *WebSocket) HasMessage(playerID int) bool {
	return playerID != w.id && w.inbox.Len() > 0
}

func (w *WebSocket) Activate() {
	w.active.Store(true)
}

func (w *WebSocket) Deactivate() {
	w.active.Store(false)
	w.inbox.Clear()
}

// Close drops the peer, stops listening and waits for the pumps to exit.
func (w *WebSocket) Close() error {
	w.Deactivate()

	w.mu.Lock()
	w.closed = true
	p := w.peer
	w.mu.Unlock()
	if nil != p {
		w.detach(p)
	}

	var err error
	if nil != w.server {
		err = w.server.Close()
	}
	w.pumps.Wait()
	return err
}
