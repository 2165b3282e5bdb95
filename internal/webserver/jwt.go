package webserver

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const tokenTTL = 24 * time.Hour

// Identity is the authenticated principal carried by a verified token.
type Identity struct {
	UserID int64
	Name   string
	Role   string
}

// IssueToken mints a signed HS256 token for the principal.
func IssueToken(secret string, id Identity) (string, error) {
	claims := jwt.MapClaims{
		"uid":  id.UserID,
		"name": id.Name,
		"role": id.Role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func parseToken(secret string) func(c echo.Context, auth string) (interface{}, error) {
	return func(c echo.Context, auth string) (interface{}, error) {
		token, err := jwt.Parse(auth, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			return []byte(secret), nil
		})
		if err != nil {
			return nil, err
		}
		if !token.Valid {
			return nil, errors.New("invalid token")
		}
		return token, nil
	}
}

// CurrentIdentity extracts the principal stored by the token middleware.
func CurrentIdentity(c echo.Context) (Identity, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return Identity{}, errors.New("no token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("unexpected token claims")
	}
	id := Identity{
		UserID: cast.ToInt64(claims["uid"]),
		Name:   cast.ToString(claims["name"]),
		Role:   cast.ToString(claims["role"]),
	}
	if id.UserID == 0 {
		return Identity{}, errors.New("token has no subject")
	}
	return id, nil
}
