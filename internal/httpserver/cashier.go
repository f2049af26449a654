package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant/internal/cart"
	"github.com/Skotchmaster/restaurant/internal/directory"
	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/service"
	"github.com/Skotchmaster/restaurant/internal/transport"
	"github.com/Skotchmaster/restaurant/internal/util"
	"github.com/Skotchmaster/restaurant/pkg/logging"
)

type CashierHTTP struct {
	Svc       *service.Coordinator
	Directory *directory.Directory
	Carts     *cart.Sessions
}

func (h *CashierHTTP) OpenCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.open_cart")

	id, cr := h.Carts.Open()
	l.Info("open_cart_success", "cart_id", id)
	return c.JSON(http.StatusCreated, transport.NewCartResponse(id, cr))
}

func (h *CashierHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.get_cart")

	id, err := paramID(c, "cart_id")
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	cr, err := h.Carts.Get(id)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(id, cr))
}

// AddItem takes the price from the menu, never from the request.
func (h *CashierHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.add_item")

	id, err := paramID(c, "cart_id")
	if err != nil {
		return fail(l, "add_item_error", err)
	}
	var req transport.AddCartItemRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_item_error", err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cr, err := h.Carts.Get(id)
	if err != nil {
		return fail(l, "add_item_error", err)
	}
	item, err := h.Directory.MenuItem(ctx, req.MenuItemID)
	if err != nil {
		return fail(l, "add_item_error", err)
	}

	err = cr.Add(cart.Item{MenuItemID: item.ID, Name: item.Name, Price: item.Price}, req.Quantity, strings.TrimSpace(req.SpecialNotes))
	if err != nil {
		return fail(l, "add_item_error", err)
	}

	l.Info("add_item_success", "cart_id", id, "menu_item_id", item.ID)
	return c.JSON(http.StatusOK, transport.NewCartResponse(id, cr))
}

func (h *CashierHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.set_quantity")

	id, err := paramID(c, "cart_id")
	if err != nil {
		return fail(l, "set_quantity_error", err)
	}
	menuItemID, err := paramID(c, "menu_item_id")
	if err != nil {
		return fail(l, "set_quantity_error", err)
	}
	var req transport.SetQuantityRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "set_quantity_error", err)
	}

	cr, err := h.Carts.Get(id)
	if err != nil {
		return fail(l, "set_quantity_error", err)
	}
	if err := cr.SetQuantity(menuItemID, req.Quantity); err != nil {
		return fail(l, "set_quantity_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(id, cr))
}

func (h *CashierHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.remove_item")

	id, err := paramID(c, "cart_id")
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	menuItemID, err := paramID(c, "menu_item_id")
	if err != nil {
		return fail(l, "remove_item_error", err)
	}

	cr, err := h.Carts.Get(id)
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	cr.Remove(menuItemID)
	return c.JSON(http.StatusOK, transport.NewCartResponse(id, cr))
}

func (h *CashierHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.clear_cart")

	id, err := paramID(c, "cart_id")
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}
	cr, err := h.Carts.Get(id)
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}
	cr.Clear()

	l.Info("clear_cart_success", "cart_id", id)
	return c.JSON(http.StatusOK, transport.NewCartResponse(id, cr))
}

// Checkout holds the cart exclusively while the order is created and gives
// it back only if creation failed.
func (h *CashierHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.checkout")

	id, err := paramID(c, "cart_id")
	if err != nil {
		return fail(l, "checkout_error", err)
	}
	var req transport.CheckoutRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "checkout_error", err)
	}

	cr, err := h.Carts.Take(id)
	if err != nil {
		return fail(l, "checkout_error", err)
	}
	order, err := h.Svc.CreateOrder(ctx, req.CustomerName, cr.Lines())
	if err != nil {
		h.Carts.Restore(id, cr)
		return fail(l, "checkout_error", err)
	}

	l.Info("checkout_success", "order_number", order.OrderNumber, "total", order.TotalAmount.StringFixed(2))
	return c.JSON(http.StatusCreated, order)
}

func (h *CashierHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.list_orders")

	page, err := queryInt(c, "page")
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	f := domain.OrderFilter{NewestFirst: true}
	f.Offset, f.Limit = util.Calculate(page, size)
	for _, s := range strings.Split(c.QueryParam("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.Statuses = append(f.Statuses, domain.OrderStatus(s))
		}
	}
	if ps := c.QueryParam("payment_status"); ps != "" {
		f.PaymentStatus = domain.PaymentStatus(ps)
	}

	orders, err := h.Svc.ListOrders(ctx, f)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, list(orders, false))
}

func (h *CashierHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.get_order")

	id, err := paramID(c, "id")
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	payments, err := h.Svc.Payments(ctx, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.OrderDetail{Order: order, Payments: payments})
}

func (h *CashierHTTP) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.record_payment")

	id, err := paramID(c, "id")
	if err != nil {
		return fail(l, "record_payment_error", err)
	}
	var req transport.PaymentRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "record_payment_error", err)
	}

	res, err := h.Svc.RecordPayment(ctx, id, req.Amount, domain.PaymentMethod(req.Method))
	if err != nil {
		return fail(l, "record_payment_error", err)
	}

	l.Info("record_payment_success", "order_number", res.Order.OrderNumber, "method", req.Method)
	return c.JSON(http.StatusCreated, res)
}

func (h *CashierHTTP) Assign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.assign")

	id, err := paramID(c, "id")
	if err != nil {
		return fail(l, "assign_chef_error", err)
	}
	var req transport.AssignRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "assign_chef_error", err)
	}

	order, err := h.Svc.AssignToChef(ctx, id, req.ChefID)
	if err != nil {
		return fail(l, "assign_chef_error", err)
	}

	l.Info("assign_chef_success", "order_number", order.OrderNumber, "chef_id", req.ChefID)
	return c.JSON(http.StatusOK, order)
}

func (h *CashierHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cashier.cancel")

	id, err := paramID(c, "id")
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	order, err := h.Svc.Cancel(ctx, id)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_number", order.OrderNumber)
	return c.JSON(http.StatusOK, order)
}

// queryInt returns 0 for a missing parameter.
func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return n, nil
}

func list[T any](items []T, stale bool) transport.ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return transport.ListResponse[T]{Items: items, Stale: stale}
}
