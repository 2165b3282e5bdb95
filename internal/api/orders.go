package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/orders"
	"github.com/miniapp/foodshare/internal/webserver"
)

type createOrderPayload struct {
	ShopId     int64  `json:"shop_id" validate:"required"`
	ProductId  int64  `json:"product_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required"`
	PickupTime string `json:"pickup_time" validate:"required"`
	UnitPrice  int64  `json:"unit_price" validate:"required"`
	TotalPrice int64  `json:"total_price" validate:"required"`
}

func registerOrderRoutes() {
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiGET("/orders", listMyOrders)
	webserver.ApiPOST("/orders/:id/cancel", cancelOrder)
	webserver.ApiPOST("/orders/:id/confirm", confirmOrder)
}

func createOrder(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}

	var payload createOrderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	pickup, err := time.Parse(time.RFC3339, payload.PickupTime)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid pickup time format, expected RFC3339", nil)
	}

	order, err := engine.Create(c.Request().Context(), orders.CreateRequest{
		UserID:     identity.UserID,
		ShopID:     payload.ShopId,
		ProductID:  payload.ProductId,
		Quantity:   payload.Quantity,
		PickupTime: pickup,
		UnitPrice:  payload.UnitPrice,
		TotalPrice: payload.TotalPrice,
	})
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, order)
}

func listMyOrders(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}

	var status *domain.OrderStatus
	if code := c.QueryParam("status"); code != "" {
		parsed, err := domain.ParseOrderStatusCode(code)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid order status", nil)
		}
		status = &parsed
	}

	rows, err := queries.ListByUser(c.Request().Context(), identity.UserID, status)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

func cancelOrder(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	order, err := engine.CancelByOwner(c.Request().Context(), id, identity.UserID)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, order)
}

// confirmOrder completes a pending order at pickup. Restricted to backoffice
// roles.
func confirmOrder(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}
	if identity.Role != domain.RoleAdmin && identity.Role != domain.RoleSeller {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Backoffice role required", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	order, err := engine.Confirm(c.Request().Context(), id)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, order)
}
