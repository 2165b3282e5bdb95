package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/miniapp/foodshare/internal/orders"
)

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":    "OK",
		"message": "success",
		"data":    data,
	})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	body := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	return c.JSON(status, body)
}

// failFromError maps an orders engine error onto the HTTP surface. Unknown
// errors surface as 500 without leaking internals.
func failFromError(c echo.Context, err error) error {
	code := orders.CodeOf(err)
	status := http.StatusBadRequest
	switch code {
	case orders.CodeOrderNotFound, orders.CodeProductNotFound, orders.CodeShopNotFound:
		status = http.StatusNotFound
	case orders.CodeForbidden:
		status = http.StatusForbidden
	case orders.CodeInternalError:
		status = http.StatusInternalServerError
	}
	message := err.Error()
	if code == orders.CodeInternalError {
		message = "Internal server error"
	}
	var oe *orders.Error
	if errors.As(err, &oe) {
		message = oe.Message
	}
	return fail(c, status, string(code), message, nil)
}

func handleValidationError(c echo.Context, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Invalid value for: "+strings.Join(fields, ", "), nil)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// parsePagination reads zero-based page and size query parameters.
func parsePagination(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))
	if page < 0 {
		page = 0
	}
	return page, size
}
