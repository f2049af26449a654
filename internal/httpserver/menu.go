package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant/internal/directory"
	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/pkg/logging"
)

type MenuHTTP struct {
	Directory *directory.Directory
}

func (h *MenuHTTP) MenuItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.items")

	menu, err := h.Directory.ListAvailableMenuItems(ctx)
	if err != nil {
		return fail(l, "menu_items_error", err)
	}
	return c.JSON(http.StatusOK, list(menu.Items, menu.Stale))
}

func (h *MenuHTTP) Chefs(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.chefs")

	var status *domain.ChefStatus
	if v := c.QueryParam("status"); v != "" {
		s := domain.ChefStatus(v)
		if !s.Valid() {
			return fail(l, "chefs_error", fmt.Errorf("%w: unknown chef status %q", domain.ErrValidation, v))
		}
		status = &s
	}

	chefs, err := h.Directory.ListChefs(ctx, status)
	if err != nil {
		return fail(l, "chefs_error", err)
	}
	return c.JSON(http.StatusOK, list(chefs.Chefs, chefs.Stale))
}
