package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cargolink/tracking-system/pkg/uuid"
	"github.com/gorilla/websocket"
)

// Conn wraps a single websocket connection watching one vehicle.
type Conn struct {
	conn      *websocket.Conn
	id        uuid.UUID
	vehicleID string
	doneCtx   context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
}

func NewConn(ctx context.Context, id uuid.UUID, vehicleID string, conn *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	return &Conn{
		conn:      conn,
		id:        id,
		vehicleID: vehicleID,
		doneCtx:   ctx,
		cancel:    cancel,
	}
}

// ID returns the hub key of this connection.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// VehicleID returns the vehicle this connection is subscribed to.
func (c *Conn) VehicleID() string {
	return c.vehicleID
}

// Done is closed when the connection is shut down.
func (c *Conn) Done() <-chan struct{} {
	return c.doneCtx.Done()
}

func (c *Conn) health() error {
	if c.conn == nil {
		return errors.New("connection is nil")
	}

	select {
	case <-c.doneCtx.Done():
		return errors.New("connection context cancelled")
	default:
	}

	if err := c.conn.WriteControl(
		websocket.PingMessage,
		[]byte("ping"),
		time.Now().Add(3*time.Second),
	); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Conn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.health(); err != nil {
		return fmt.Errorf("send failed: connection not healthy: %w", err)
	}
	return c.conn.WriteJSON(msg)
}

// Listen blocks reading messages until the connection closes. The tracking
// protocol is one-directional, so inbound messages are only drained to detect
// the peer going away.
func (c *Conn) Listen(handler func(msg map[string]any) error) error {
	for {
		select {
		case <-c.doneCtx.Done():
			return errors.New("listen stopped: context done")
		default:
			var msg map[string]any
			if err := c.conn.ReadJSON(&msg); err != nil {
				return fmt.Errorf("read failed: %w", err)
			}
			if handler == nil {
				continue
			}
			if err := handler(msg); err != nil {
				return fmt.Errorf("handler failed: %w", err)
			}
		}
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
