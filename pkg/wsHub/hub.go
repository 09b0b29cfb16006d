package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/uuid"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub stores and manages all active WebSocket connections. Several
// connections may watch the same vehicle, so clients are keyed by their own
// connection id rather than by vehicle.
type ConnectionHub struct {
	clients map[uuid.UUID]*Conn
	l       logger.Logger
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[uuid.UUID]*Conn),
		l:       l,
	}
}

// Add registers a new connection in the hub.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	if existing, ok := h.clients[newConn.id]; ok {
		h.l.Warn(ctx,
			"replacing existing connection",
			"conn_id", existing.id,
			"vehicle_id", existing.vehicleID,
		)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx,
				"failed to close existing conn",
				"conn_id", existing.id,
				"err", err.Error(),
			)
		}
	}

	h.clients[newConn.id] = newConn
	h.wg.Add(1)

	return nil
}

// Delete removes and closes the connection with the given id
func (h *ConnectionHub) Delete(id uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_connection_delete")

	conn, ok := h.clients[id]
	if !ok {
		h.l.Warn(ctx,
			"delete called for unknown connection",
			"conn_id", id,
		)
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Warn(ctx,
			"failed to close conn",
			"conn_id", conn.id,
			"err", err.Error(),
		)
	}

	delete(h.clients, id)
	h.wg.Done()

	return nil
}

// SendToVehicle delivers a message to every connection watching vehicleID.
// Returns ErrConnIsNotFound if nobody is watching.
func (h *ConnectionHub) SendToVehicle(vehicleID string, msg any) error {
	h.mu.Lock()
	conns := make([]*Conn, 0, 2)
	for _, conn := range h.clients {
		if conn.vehicleID == vehicleID {
			conns = append(conns, conn)
		}
	}
	h.mu.Unlock()

	if len(conns) == 0 {
		return ErrConnIsNotFound
	}

	ctx := wrap.WithAction(context.Background(), "ws_send_to_vehicle")
	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			h.l.Warn(ctx,
				"failed to send to connection",
				"conn_id", conn.id,
				"vehicle_id", vehicleID,
				"err", err.Error(),
			)
		}
	}

	return nil
}

// Close closes every websocket connection
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	// copy clients under the lock
	h.mu.Lock()
	clients := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		clients = append(clients, conn)
	}
	h.mu.Unlock()
	// close outside the lock
	for _, conn := range clients {
		_ = h.Delete(conn.id)
	}

	h.wg.Wait()

	h.l.Info(ctx, "all websocket connections closed gracefully")
}

// Len returns the number of active connections
func (h *ConnectionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// GetConn returns the connection with the given id
func (h *ConnectionHub) GetConn(id uuid.UUID) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[id]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return conn, nil
}
