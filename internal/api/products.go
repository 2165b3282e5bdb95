package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/miniapp/foodshare/internal/webserver"
)

func registerProductRoutes() {
	webserver.ApiGET("/products/popular", listPopularProducts)
}

func listPopularProducts(c echo.Context) error {
	page, size := parsePagination(c)

	var lat, lng *float64
	if raw := c.QueryParam("lat"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid lat", nil)
		}
		lat = &v
	}
	if raw := c.QueryParam("lng"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid lng", nil)
		}
		lng = &v
	}

	result, err := search.PopularProducts(c.Request().Context(), lat, lng, page, size)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query popular products", nil)
	}
	return ok(c, result)
}
