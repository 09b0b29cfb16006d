package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cargolink/tracking-system/internal/adapter/http/handler/dto"
	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/service/tracking"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/metrics"
	"github.com/cargolink/tracking-system/pkg/uuid"
	ws "github.com/cargolink/tracking-system/pkg/wsHub"
)

// VehicleWS serves websocket clients watching a vehicle. Every accepted
// connection gets its own tracking session feeding it location updates.
type VehicleWS struct {
	hub            *ws.ConnectionHub
	channel        *tracking.Channel
	staleThreshold time.Duration
	l              logger.Logger
	service        string

	upgrader websocket.Upgrader
}

func NewVehicleWS(hub *ws.ConnectionHub, channel *tracking.Channel, staleThreshold time.Duration, l logger.Logger, service string) *VehicleWS {
	return &VehicleWS{
		hub:            hub,
		channel:        channel,
		staleThreshold: staleThreshold,
		l:              l,
		service:        service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS godoc
// @Summary      Vehicle location stream
// @Description  Upgrades to a WebSocket that streams live position updates for a vehicle
// @Tags         Vehicles
// @Param        vehicle_id  path  string  true  "Vehicle ID"
// @Success      101
// @Router       /ws/vehicles/{vehicle_id} [get]
func (h *VehicleWS) HandleWS(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicle_id")
	ctx := wrap.WithAction(wrap.WithVehicleID(r.Context(), vehicleID), "vehicle_ws_connect")

	if vehicleID == "" {
		errorResponse(w, http.StatusBadRequest, "vehicle id must be provided")
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to upgrade connection", err)
		return
	}

	connID, _ := uuid.New()
	conn := ws.NewConn(r.Context(), connID, vehicleID, wsConn)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register connection", err)
		conn.Close()
		return
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(h.service).Inc()
	defer metrics.WebSocketConnectionsGauge.WithLabelValues(h.service).Dec()

	session := tracking.NewSession(h.channel, h.staleThreshold, h.l, h.service)
	session.OnUpdate(func(update models.LocationUpdate) {
		if err := conn.Send(envelope{"location": dto.FromLocationUpdate(update)}); err != nil {
			h.l.Warn(ctx, "failed to push update to websocket", "err", err.Error())
		}
	})

	if err := session.Subscribe(ctx, vehicleID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to subscribe tracking session", err)
		h.hub.Delete(conn.ID())
		return
	}
	defer session.Unsubscribe()

	// Seed the client with the last known position, if any.
	if latest, err := h.channel.Latest(ctx, vehicleID); err == nil {
		if err := conn.Send(envelope{"location": dto.FromLocationUpdate(latest)}); err != nil {
			h.l.Warn(ctx, "failed to send initial position", "err", err.Error())
		}
	}

	h.l.Info(ctx, "websocket client connected")

	// Inbound traffic is drained only to notice the peer closing.
	if err := conn.Listen(nil); err != nil {
		h.l.Debug(ctx, "websocket connection closed", "reason", err.Error())
	}

	h.hub.Delete(conn.ID())
	h.l.Info(ctx, "websocket client disconnected")
}
