package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/webserver"
)

type addMemberPayload struct {
	BackofficeUserId int64  `json:"backoffice_user_id,string" validate:"required"`
	Role             string `json:"role" validate:"omitempty,oneof=admin seller"`
}

func registerShopRoutes() {
	webserver.ApiGET("/seller/shops", listMyShops)
	webserver.ApiPOST("/admin/shops/:id/members", addShopMember)
}

// listMyShops returns the shop ids the caller operates.
func listMyShops(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}

	ids, err := membership.ListShopIDsFor(c.Request().Context(), identity.UserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query shops", nil)
	}
	return ok(c, map[string]interface{}{"shop_ids": ids})
}

func addShopMember(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}
	if identity.Role != domain.RoleAdmin {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Admin role required", nil)
	}
	shopID, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid shop ID", nil)
	}

	var payload addMemberPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse member parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	role := payload.Role
	if role == "" {
		role = domain.RoleSeller
	}

	if err := membership.AddMember(c.Request().Context(), shopID, payload.BackofficeUserId, role); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add shop member", nil)
	}
	return ok(c, map[string]interface{}{"shop_id": shopID, "backoffice_user_id": payload.BackofficeUserId, "role": role})
}
