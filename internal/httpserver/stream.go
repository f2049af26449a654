package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant/internal/bridge"
	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/pkg/logging"
)

// streamOrders writes bridge updates as server-sent events until the client
// goes away. The event id is the update Seq so clients can spot gaps.
func streamOrders(c echo.Context, b *bridge.Bridge, filter domain.OrderFilter) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	sub := b.Subscribe(ctx, filter)
	defer sub.Close()

	l.Info("stream_opened")
	for u := range sub.Updates() {
		data, err := json.Marshal(u)
		if err != nil {
			l.Error("stream_encode_error", "error", err)
			continue
		}
		event := "snapshot"
		if u.Stale {
			event = "warning"
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", u.Seq, event, data); err != nil {
			l.Warn("stream_write_error", "error", err)
			return nil
		}
		w.Flush()
	}
	l.Info("stream_closed")
	return nil
}
