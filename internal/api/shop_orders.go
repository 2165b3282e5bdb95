package api

import (
	"net/http"
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/orders"
	"github.com/miniapp/foodshare/internal/webserver"
)

type updateStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

func registerShopOrderRoutes() {
	webserver.ApiGET("/seller/orders", listShopOrders)
	webserver.ApiPUT("/seller/orders/:id/status", updateShopOrderStatus)
	webserver.ApiGET("/admin/orders", listAdminOrders)
	webserver.ApiPUT("/admin/orders/:id/status", updateAdminOrderStatus)
}

// parseListRequest reads the shared listing filters: shop_id, status,
// from_date/to_date (any common date layout), sort_by and sort_dir plus
// pagination.
func parseListRequest(c echo.Context) (orders.ListRequest, error) {
	page, size := parsePagination(c)
	req := orders.ListRequest{
		Page:    page,
		Size:    size,
		SortBy:  c.QueryParam("sort_by"),
		SortDir: c.QueryParam("sort_dir"),
	}

	if raw := c.QueryParam("shop_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, errors.New("Invalid shop_id")
		}
		req.ShopID = &id
	}
	if code := c.QueryParam("status"); code != "" {
		parsed, err := domain.ParseOrderStatusCode(code)
		if err != nil {
			return req, errors.New("Invalid order status")
		}
		req.Status = &parsed
	}
	if raw := c.QueryParam("from_date"); raw != "" {
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return req, errors.New("Invalid from_date")
		}
		req.FromDate = &t
	}
	if raw := c.QueryParam("to_date"); raw != "" {
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return req, errors.New("Invalid to_date")
		}
		req.ToDate = &t
	}
	return req, nil
}

func listShopOrders(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}

	req, err := parseListRequest(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	result, err := queries.ListForShop(c.Request().Context(), identity.UserID, req)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, result)
}

func updateShopOrderStatus(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var payload updateStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	status, err := domain.ParseOrderStatusCode(payload.Status)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ORDER_STATUS", "Invalid order status", nil)
	}

	order, err := engine.UpdateStatusForSeller(c.Request().Context(), id, status, identity.UserID)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, order)
}

func listAdminOrders(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}
	if identity.Role != domain.RoleAdmin {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Admin role required", nil)
	}

	req, err := parseListRequest(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	result, err := queries.ListForAdmin(c.Request().Context(), req)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, result)
}

func updateAdminOrderStatus(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}
	if identity.Role != domain.RoleAdmin {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Admin role required", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var payload updateStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	status, err := domain.ParseOrderStatusCode(payload.Status)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ORDER_STATUS", "Invalid order status", nil)
	}

	order, err := engine.UpdateStatus(c.Request().Context(), id, status)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, order)
}
