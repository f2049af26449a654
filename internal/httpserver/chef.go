package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant/internal/bridge"
	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/service"
	"github.com/Skotchmaster/restaurant/internal/transport"
	"github.com/Skotchmaster/restaurant/pkg/logging"
)

type ChefHTTP struct {
	Svc    *service.Coordinator
	Bridge *bridge.Bridge
}

func (h *ChefHTTP) Orders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chef.orders")

	chefID, err := paramID(c, "chef_id")
	if err != nil {
		return fail(l, "chef_orders_error", err)
	}
	orders, err := h.Svc.ChefOrders(ctx, chefID)
	if err != nil {
		return fail(l, "chef_orders_error", err)
	}
	return c.JSON(http.StatusOK, list(orders, false))
}

func (h *ChefHTTP) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chef.stream")

	chefID, err := paramID(c, "chef_id")
	if err != nil {
		return fail(l, "chef_stream_error", err)
	}
	if _, err := h.Svc.ChefOrders(ctx, chefID); err != nil {
		return fail(l, "chef_stream_error", err)
	}
	return streamOrders(c, h.Bridge, domain.ChefQueue(chefID))
}

func (h *ChefHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chef.update_item")

	orderID, err := paramID(c, "id")
	if err != nil {
		return fail(l, "update_item_error", err)
	}
	itemID, err := paramID(c, "item_id")
	if err != nil {
		return fail(l, "update_item_error", err)
	}
	var req transport.StatusRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_item_error", err)
	}

	order, err := h.Svc.UpdateItemStatus(ctx, orderID, itemID, domain.ItemStatus(req.Status))
	if err != nil {
		return fail(l, "update_item_error", err)
	}

	l.Info("update_item_success", "order_number", order.OrderNumber, "item_id", itemID, "item_status", req.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *ChefHTTP) MarkReady(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chef.mark_ready")

	orderID, err := paramID(c, "id")
	if err != nil {
		return fail(l, "mark_ready_error", err)
	}
	order, err := h.Svc.MarkReady(ctx, orderID)
	if err != nil {
		return fail(l, "mark_ready_error", err)
	}

	l.Info("mark_ready_success", "order_number", order.OrderNumber)
	return c.JSON(http.StatusOK, order)
}

func (h *ChefHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chef.set_status")

	chefID, err := paramID(c, "chef_id")
	if err != nil {
		return fail(l, "set_chef_status_error", err)
	}
	var req transport.StatusRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "set_chef_status_error", err)
	}

	chef, err := h.Svc.SetChefStatus(ctx, chefID, domain.ChefStatus(req.Status))
	if err != nil {
		return fail(l, "set_chef_status_error", err)
	}

	l.Info("set_chef_status_success", "chef_id", chef.ID, "chef_status", chef.Status)
	return c.JSON(http.StatusOK, chef)
}
