package handler

import (
	"testing"
	"time"

	"github.com/cargolink/tracking-system/internal/service/tracking"
	"github.com/cargolink/tracking-system/pkg/logger"
	ws "github.com/cargolink/tracking-system/pkg/wsHub"
)

// The stale threshold comes from configuration; the handler must carry it
// into every session it creates instead of the package default.
func TestNewVehicleWSCarriesConfiguredStaleThreshold(t *testing.T) {
	log := logger.InitLogger("handler-test", logger.LevelError)
	ch := tracking.NewChannel(tracking.NewMemoryStore(), time.Second, log, "test")
	hub := ws.NewConnHub(log)
	defer hub.Close()

	want := 7 * time.Second
	h := NewVehicleWS(hub, ch, want, log, "test")
	if h.staleThreshold != want {
		t.Fatalf("staleThreshold = %v, want %v", h.staleThreshold, want)
	}
}
