package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/restaurant/pkg/middleware/auth"
)

const (
	RoleCashier = "cashier"
	RoleChef    = "chef"
	RoleWaiter  = "waiter"
)

type Deps struct {
	CashierHandler *CashierHTTP
	ChefHandler    *ChefHTTP
	WaiterHandler  *WaiterHTTP
	MenuHandler    *MenuHTTP
	JWTSecret      []byte
	// Ready reports whether the backend can serve requests.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	roleMW := middleware.NewRoleMiddleware(d.JWTSecret)

	staff := roleMW.RequireRole(RoleCashier, RoleChef, RoleWaiter)
	e.GET("/menu/items", d.MenuHandler.MenuItems, staff)
	e.GET("/chefs", d.MenuHandler.Chefs, staff)

	cashier := e.Group("/cashier", roleMW.RequireRole(RoleCashier))
	cashier.POST("/carts", d.CashierHandler.OpenCart)
	cashier.GET("/carts/:cart_id", d.CashierHandler.GetCart)
	cashier.POST("/carts/:cart_id/items", d.CashierHandler.AddItem)
	cashier.PATCH("/carts/:cart_id/items/:menu_item_id", d.CashierHandler.SetQuantity)
	cashier.DELETE("/carts/:cart_id/items/:menu_item_id", d.CashierHandler.RemoveItem)
	cashier.DELETE("/carts/:cart_id", d.CashierHandler.ClearCart)
	cashier.POST("/carts/:cart_id/checkout", d.CashierHandler.Checkout)
	cashier.GET("/orders", d.CashierHandler.ListOrders)
	cashier.GET("/orders/:id", d.CashierHandler.GetOrder)
	cashier.POST("/orders/:id/payments", d.CashierHandler.RecordPayment)
	cashier.POST("/orders/:id/assign", d.CashierHandler.Assign)
	cashier.POST("/orders/:id/cancel", d.CashierHandler.Cancel)

	chef := e.Group("/chef", roleMW.RequireRole(RoleChef))
	chef.GET("/:chef_id/orders", d.ChefHandler.Orders)
	chef.GET("/:chef_id/orders/stream", d.ChefHandler.Stream)
	chef.PUT("/:chef_id/status", d.ChefHandler.SetStatus)
	chef.PATCH("/orders/:id/items/:item_id", d.ChefHandler.UpdateItem)
	chef.POST("/orders/:id/ready", d.ChefHandler.MarkReady)

	waiter := e.Group("/waiter", roleMW.RequireRole(RoleWaiter))
	waiter.GET("/orders", d.WaiterHandler.Orders)
	waiter.GET("/orders/stream", d.WaiterHandler.Stream)
	waiter.POST("/orders/:id/complete", d.WaiterHandler.Complete)
}
