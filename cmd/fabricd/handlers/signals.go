package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierr "github.com/aiverse/datafabric/pkg/api/types/errors"
	"github.com/aiverse/datafabric/pkg/auth"
	"github.com/aiverse/datafabric/pkg/observability/signals"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// intermediaries.
const heartbeatInterval = 15 * time.Second

// SignalsHandler streams feedback signals over Server-Sent Events.
//
// Query filters: "domain" and repeatable "signal_type". The stream is
// always scoped to the requester's tenant.
func SignalsHandler(broker *signals.Broker) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenant, ok := auth.Tenant(c)
		if !ok {
			return apierr.Unauthorized("bearer token is required")
		}

		filter := signals.Filter{
			Domain:      c.QueryParam("domain"),
			SignalTypes: c.QueryParams()["signal_type"],
			Tenant:      &tenant,
		}
		events, cancel := broker.Subscribe(filter, 64)
		defer cancel()

		response := c.Response()
		response.Header().Set(echo.HeaderContentType, "text/event-stream")
		response.Header().Set(echo.HeaderCacheControl, "no-store")
		response.Header().Set(echo.HeaderConnection, "keep-alive")
		response.WriteHeader(http.StatusOK)
		response.Flush()

		ctx := c.Request().Context()
		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-heartbeat.C:
				if _, err := fmt.Fprint(response, ": heartbeat\n\n"); err != nil {
					return nil
				}
				response.Flush()
			case ev, open := <-events:
				if !open {
					return nil
				}
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(response, "event: %s\ndata: %s\n\n", ev.SignalType, data); err != nil {
					return nil
				}
				response.Flush()
			}
		}
	}
}
