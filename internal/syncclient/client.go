package syncclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/pocketbank/internal/infrastructure/metrics"
)

// State is the connection state of the sync channel.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// DefaultCooldown is the wait before a single reconnect attempt after a
// failure. Deliberately long: the mirror is best-effort and must not
// hot-loop against an unreachable peer.
const DefaultCooldown = 2 * time.Minute

// Conn is the subset of *websocket.Conn the client uses.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// Dialer opens a sync channel. Wrapped as an interface so tests can
// inject a fake peer.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

type wsDialer struct {
	dialer *websocket.Dialer
}

func (w wsDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, resp, err := w.dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// timer is the subset of *time.Timer the reconnect path needs.
type timer interface {
	Stop() bool
}

type timerFactory func(d time.Duration, fn func()) timer

func realTimerFactory(d time.Duration, fn func()) timer {
	return time.AfterFunc(d, fn)
}

type snapshotFrame struct {
	Type         string `json:"type"`
	ClientID     string `json:"clientId"`
	Profile      any    `json:"profile"`
	Loans        any    `json:"loans"`
	Transactions any    `json:"transactions"`
	Now          string `json:"now"`
}

type updateFrame struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
	Event    any    `json:"event"`
	Now      string `json:"now"`
}

// Config carries the sync client dependencies.
type Config struct {
	URL      string
	ClientID string
	Target   StateTarget
	Cooldown time.Duration
	Dialer   Dialer
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Client mirrors local state to a remote peer over a websocket. Every
// fault is absorbed: a failed dial or a dropped connection schedules
// one reconnect after the cooldown, and pushes made while disconnected
// are silently dropped. Callers never see an error from this type.
type Client struct {
	url      string
	clientID string
	target   StateTarget
	cooldown time.Duration
	dialer   Dialer
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newTimer timerFactory

	// wmu serializes frame writes: gorilla/websocket forbids
	// concurrent writers on one connection.
	wmu sync.Mutex

	mu        sync.Mutex
	state     State
	conn      Conn
	reconnect timer
	// generation invalidates stale read loops and reconnect timers
	// after a manual Disconnect.
	generation uint64
}

// New creates a sync client. It does not connect; call Connect.
func New(cfg Config) *Client {
	return newClient(cfg, realTimerFactory)
}

func newClient(cfg Config, factory timerFactory) *Client {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Dialer == nil {
		cfg.Dialer = wsDialer{dialer: websocket.DefaultDialer}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		url:      cfg.URL,
		clientID: cfg.ClientID,
		target:   cfg.Target,
		cooldown: cfg.Cooldown,
		dialer:   cfg.Dialer,
		logger:   cfg.Logger.With().Str("component", "syncclient").Logger(),
		metrics:  cfg.Metrics,
		now:      cfg.Now,
		newTimer: factory,
		state:    StateDisconnected,
	}
}

// State reports the current channel state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the channel and sends a full snapshot. Idempotent: a
// call while connecting or connected is a no-op. Failures are logged
// and answered with a scheduled reconnect, never returned.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.cancelReconnectLocked()
	c.state = StateConnecting
	gen := c.generation
	c.mu.Unlock()

	header := http.Header{"X-Client-Id": []string{c.clientID}}
	conn, err := c.dialer.Dial(ctx, c.url, header)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", c.url).Msg("sync dial failed")
		c.handleFailure(gen)
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		// Disconnect raced the dial; drop the late connection.
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.state = StateConnected
	c.cancelReconnectLocked()
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.SyncConnected.Set(1)
	}
	c.logger.Info().Str("client_id", c.clientID).Msg("sync channel connected")

	c.sendSnapshot(conn)
	go c.readLoop(conn, gen)
}

// PushUpdate mirrors one state event to the peer. Fire and forget:
// when the channel is down the event is dropped and counted.
func (c *Client) PushUpdate(event any) {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected {
		if c.metrics != nil {
			c.metrics.SyncDroppedPush.Inc()
		}
		c.logger.Debug().Msg("push dropped, channel down")
		return
	}

	frame := updateFrame{
		Type:     "STATE_UPDATED",
		ClientID: c.clientID,
		Event:    event,
		Now:      c.now().UTC().Format(time.RFC3339),
	}
	if err := c.writeFrame(conn, frame); err != nil {
		c.logger.Warn().Err(err).Msg("push write failed")
	}
}

func (c *Client) writeFrame(conn Conn, frame any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return conn.WriteJSON(frame)
}

// Disconnect tears the channel down and cancels any pending reconnect.
// Safe to call in any state.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.generation++
	c.cancelReconnectLocked()
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if c.metrics != nil {
		c.metrics.SyncConnected.Set(0)
	}
	c.logger.Info().Msg("sync channel disconnected")
}

func (c *Client) sendSnapshot(conn Conn) {
	now := c.now()
	frame := snapshotFrame{
		Type:         "CLIENT_SNAPSHOT",
		ClientID:     c.clientID,
		Profile:      c.target.UserProfile(),
		Loans:        c.target.LoanApplications(),
		Transactions: c.target.Transactions(),
		Now:          now.UTC().Format(time.RFC3339),
	}
	if err := c.writeFrame(conn, frame); err != nil {
		c.logger.Warn().Err(err).Msg("snapshot write failed")
		return
	}
	if err := c.target.MarkSynced(now); err != nil {
		c.logger.Warn().Err(err).Msg("failed to record sync time")
	}
}

func (c *Client) readLoop(conn Conn, gen uint64) {
	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			c.mu.Lock()
			stale := gen != c.generation
			c.mu.Unlock()
			if !stale {
				c.logger.Warn().Err(err).Msg("sync channel closed")
				c.dropConnection(gen)
				c.handleFailure(gen)
			}
			return
		}

		if c.metrics != nil {
			c.metrics.SyncCommands.WithLabelValues(cmd.Action).Inc()
		}
		if err := dispatch(c.target, cmd); err != nil {
			c.logger.Warn().Err(err).Str("action", cmd.Action).Msg("remote command rejected")
		}
	}
}

func (c *Client) dropConnection(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	if c.metrics != nil {
		c.metrics.SyncConnected.Set(0)
	}
}

// handleFailure schedules exactly one reconnect attempt after the
// cooldown. A success or an explicit Disconnect cancels it.
func (c *Client) handleFailure(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	c.state = StateDisconnected
	if c.reconnect != nil {
		return
	}

	c.logger.Info().Dur("cooldown", c.cooldown).Msg("reconnect scheduled")
	c.reconnect = c.newTimer(c.cooldown, func() {
		c.mu.Lock()
		stale := gen != c.generation
		c.reconnect = nil
		c.mu.Unlock()
		if stale {
			return
		}
		if c.metrics != nil {
			c.metrics.SyncReconnects.Inc()
		}
		c.Connect(context.Background())
	})
}

func (c *Client) cancelReconnectLocked() {
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
}
