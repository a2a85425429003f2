package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lotas/tabdedupe/internal/applog"
	"nhooyr.io/websocket"
)

var (
	// ErrNotConnected is returned when no extension is connected.
	ErrNotConnected = errors.New("browser extension not connected")
	// ErrDisconnected fails requests still pending when the extension goes
	// away.
	ErrDisconnected = errors.New("browser extension disconnected")
)

// DefaultTimeout bounds how long Call waits for a response.
const DefaultTimeout = 10 * time.Second

// Event types sent by the extension.
const (
	EventTabUpdated    = "tab.updated"
	EventTabRemoved    = "tab.removed"
	EventTabMoved      = "tab.moved"
	EventTabAttached   = "tab.attached"
	EventTabDetached   = "tab.detached"
	EventWindowFocused = "window.focused"
	EventWindowRemoved = "window.removed"
	EventSnapshot      = "snapshot"
)

const typeResponse = "response"

// IncomingMsg is a message from the extension: either a response to a
// command (ID set) or a change event (Type set).
type IncomingMsg struct {
	Type     string          `json:"type,omitempty"`
	ID       string          `json:"id,omitempty"`
	OK       *bool           `json:"ok,omitempty"`
	Error    string          `json:"error,omitempty"`
	Tabs     json.RawMessage `json:"tabs,omitempty"`
	Tab      json.RawMessage `json:"tab,omitempty"`
	TabID    int             `json:"tabId,omitempty"`
	WindowID int             `json:"windowId,omitempty"`
	Failed   []int           `json:"failed,omitempty"`
}

// IsResponse reports whether m answers a command.
func (m IncomingMsg) IsResponse() bool {
	return m.ID != "" && (m.Type == "" || m.Type == typeResponse)
}

// OutgoingMsg is a command to the extension.
type OutgoingMsg struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	TabID    int    `json:"tabId,omitempty"`
	TabIDs   []int  `json:"tabIds,omitempty"`
	WindowID int    `json:"windowId,omitempty"`
	Index    *int   `json:"index,omitempty"`
	URL      string `json:"url,omitempty"`
}

// CommandError is a command the extension answered with ok=false.
type CommandError struct {
	Action  string
	Message string
	Failed  []int
}

func (e *CommandError) Error() string {
	if len(e.Failed) > 0 {
		return fmt.Sprintf("%s: %s (tabs %v)", e.Action, e.Message, e.Failed)
	}
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// FailedIDs returns the tab IDs the extension reported as failed. The other
// tabs of the command were applied.
func (e *CommandError) FailedIDs() []int {
	return e.Failed
}

// Server manages the WebSocket connection to the extension.
type Server struct {
	port    int
	timeout time.Duration
	events  chan IncomingMsg
	nextID  atomic.Uint64

	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
	pending map[string]chan IncomingMsg
}

// New creates a new Server. Port 0 means the caller manages the listener.
// A timeout of 0 uses DefaultTimeout.
func New(port int, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Server{
		port:    port,
		timeout: timeout,
		events:  make(chan IncomingMsg, 64),
		pending: make(map[string]chan IncomingMsg),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Events returns the channel of change events from the extension. Events
// are dropped when nobody reads them.
func (s *Server) Events() <-chan IncomingMsg {
	return s.events
}

// Connected reports whether an extension is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// WaitConnected blocks until an extension connects or ctx is done.
func (s *Server) WaitConnected(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for !s.Connected() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrNotConnected, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

// Call sends a command and waits for the matching response. The command ID
// is assigned here.
func (s *Server) Call(ctx context.Context, msg OutgoingMsg) (IncomingMsg, error) {
	msg.ID = "cmd-" + strconv.FormatUint(s.nextID.Add(1), 10)
	reply := make(chan IncomingMsg, 1)

	s.mu.Lock()
	conn, connCtx := s.conn, s.connCtx
	if conn == nil {
		s.mu.Unlock()
		return IncomingMsg{}, ErrNotConnected
	}
	s.pending[msg.ID] = reply
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, msg.ID)
		s.mu.Unlock()
	}()

	applog.Info("ws.send", "action", msg.Action, "id", msg.ID)
	data, err := json.Marshal(msg)
	if err != nil {
		return IncomingMsg{}, err
	}
	if err := conn.Write(connCtx, websocket.MessageText, data); err != nil {
		applog.Error("ws.send", err, "action", msg.Action)
		return IncomingMsg{}, fmt.Errorf("send %s: %w", msg.Action, err)
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case resp, ok := <-reply:
		if !ok {
			return IncomingMsg{}, ErrDisconnected
		}
		if resp.OK != nil && !*resp.OK {
			return resp, &CommandError{Action: msg.Action, Message: resp.Error, Failed: resp.Failed}
		}
		return resp, nil
	case <-timer.C:
		return IncomingMsg{}, fmt.Errorf("%s: no response after %s", msg.Action, s.timeout)
	case <-ctx.Done():
		return IncomingMsg{}, ctx.Err()
	}
}

// dispatch routes an incoming message to its pending call or the event
// channel.
func (s *Server) dispatch(msg IncomingMsg) {
	if msg.IsResponse() {
		s.mu.Lock()
		defer s.mu.Unlock()
		reply, ok := s.pending[msg.ID]
		if !ok {
			applog.Info("ws.orphan", "id", msg.ID)
			return
		}
		// Sent under the lock so failPending cannot close reply first.
		select {
		case reply <- msg:
		default:
		}
		return
	}

	select {
	case s.events <- msg:
	default:
		applog.Info("ws.event_dropped", "type", msg.Type)
	}
}

// failPending closes every pending reply channel.
func (s *Server) failPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, reply := range s.pending {
		close(reply)
		delete(s.pending, id)
	}
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Printf("websocket accept: %v", err)
			applog.Error("ws.accept", err)
			return
		}

		conn.SetReadLimit(16 << 20) // tab lists of large sessions

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("ws.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			current := s.conn == conn
			if current {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			if current {
				s.failPending()
			}
			conn.CloseNow()
			applog.Info("ws.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg IncomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("ws.parse", err)
				continue
			}
			applog.Info("ws.recv", "type", msg.Type, "id", msg.ID)
			s.dispatch(msg)
		}
	})
}

// ListenAndServe starts the WebSocket server on the configured port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("server.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
