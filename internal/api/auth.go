package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/miniapp/foodshare/internal/domain"
	"github.com/miniapp/foodshare/internal/webserver"
	"github.com/miniapp/foodshare/pkg/common"
)

type loginPayload struct {
	Username string `json:"username" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=1,max=255"`
}

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Password string `json:"password" validate:"required,min=6,max=255"`
	Realname string `json:"realname" validate:"omitempty,max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/auth/login", login)
	webserver.PubPOST("/auth/register", register)
	webserver.ApiGET("/auth/me", currentUser)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var user domain.BackOfficeUser
	err := db.Where("username = ?", strings.TrimSpace(payload.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}

	hashed := common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())
	if user.Password != hashed || user.Status != common.ENABLED {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}

	token, err := webserver.IssueToken(appConfig.Web.JwtSecret, webserver.Identity{
		UserID: user.ID,
		Name:   user.Username,
		Role:   user.Role,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}

	db.Model(&domain.BackOfficeUser{}).Where("id = ?", user.ID).Update("last_login", time.Now())

	return ok(c, map[string]interface{}{
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
	})
}

// register creates a seller account. Administrator accounts are seeded at
// startup, not self-registered.
func register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse register parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	username := strings.TrimSpace(payload.Username)
	var exists int64
	db.Model(&domain.BackOfficeUser{}).Where("username = ?", username).Count(&exists)
	if exists > 0 {
		return fail(c, http.StatusConflict, "USER_EXISTS", "Username already taken", nil)
	}

	user := domain.BackOfficeUser{
		ID:       common.UUIDint64(),
		Username: username,
		Password: common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()),
		Realname: payload.Realname,
		Email:    payload.Email,
		Role:     domain.RoleSeller,
		Status:   common.ENABLED,
	}
	if err := db.Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", nil)
	}

	return ok(c, user)
}

func currentUser(c echo.Context) error {
	identity, err := webserver.CurrentIdentity(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}

	var user domain.BackOfficeUser
	err = db.Where("id = ?", identity.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", nil)
	}
	return ok(c, user)
}
