// Package httpapi is the ambient operational HTTP surface (healthz,
// metrics, debug/state) served alongside the broker's raw WebSocket
// listener, grounded on streamspace-dev-streamspace/api's gin router
// conventions (internal/handlers, internal/server): a small REST
// surface in front of a stateful core.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/z3phyrl/zeitop/internal/broker"
	"github.com/z3phyrl/zeitop/internal/metrics"
	"github.com/z3phyrl/zeitop/internal/wire"
)

// New builds the ambient HTTP router. b supplies the registries for
// /debug/state; the metrics registry is built fresh from
// internal/metrics so this surface and the broker stay decoupled.
func New(b *broker.Broker) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID())

	r.GET("/healthz", healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	r.GET("/debug/state", debugState(b))

	return r
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type stateResponse struct {
	ClientsConnected  int      `json:"clients_connected"`
	RequestServices   int      `json:"request_services"`
	BroadcastServices int      `json:"broadcast_services"`
	ServiceNames      []string `json:"service_names"`
}

// debugState reports registry counts and names only — no client
// identity beyond the counts, and no payload data.
func debugState(b *broker.Broker) gin.HandlerFunc {
	return func(c *gin.Context) {
		cmap := b.ConnectionMap()
		c.JSON(http.StatusOK, stateResponse{
			ClientsConnected:  cmap.Clients.Count(),
			RequestServices:   cmap.Services.Count(wire.ServiceKindRequest),
			BroadcastServices: cmap.Services.Count(wire.ServiceKindBroadcast),
			ServiceNames:      cmap.Services.Names(),
		})
	}
}
