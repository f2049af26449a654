package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant/internal/bridge"
	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/service"
	"github.com/Skotchmaster/restaurant/pkg/logging"
)

type WaiterHTTP struct {
	Svc    *service.Coordinator
	Bridge *bridge.Bridge
}

// scope=ready (default) lists orders waiting for pickup; scope=all adds the
// ones already handed over.
func waiterFilter(scope string) (domain.OrderFilter, error) {
	switch scope {
	case "", "ready":
		return domain.ReadyQueue(), nil
	case "all":
		return domain.OrderFilter{
			Statuses:    []domain.OrderStatus{domain.OrderReady, domain.OrderCompleted},
			NewestFirst: true,
			Limit:       100,
		}, nil
	}
	return domain.OrderFilter{}, fmt.Errorf("%w: scope must be ready or all", domain.ErrValidation)
}

func (h *WaiterHTTP) Orders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "waiter.orders")

	f, err := waiterFilter(c.QueryParam("scope"))
	if err != nil {
		return fail(l, "waiter_orders_error", err)
	}
	orders, err := h.Svc.ListOrders(ctx, f)
	if err != nil {
		return fail(l, "waiter_orders_error", err)
	}
	return c.JSON(http.StatusOK, list(orders, false))
}

func (h *WaiterHTTP) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "waiter.stream")

	f, err := waiterFilter(c.QueryParam("scope"))
	if err != nil {
		return fail(l, "waiter_stream_error", err)
	}
	return streamOrders(c, h.Bridge, f)
}

func (h *WaiterHTTP) Complete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "waiter.complete")

	orderID, err := paramID(c, "id")
	if err != nil {
		return fail(l, "complete_order_error", err)
	}
	order, err := h.Svc.Complete(ctx, orderID)
	if err != nil {
		return fail(l, "complete_order_error", err)
	}

	l.Info("complete_order_success", "order_number", order.OrderNumber)
	return c.JSON(http.StatusOK, order)
}
