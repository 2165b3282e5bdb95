package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miniapp/foodshare/internal/domain"
)

func listContext(t *testing.T, params url.Values) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/orders?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec)
}

func TestParseListRequest(t *testing.T) {
	t.Run("accepts mixed date layouts", func(t *testing.T) {
		c := listContext(t, url.Values{
			"from_date": {"2025-06-01"},
			"to_date":   {"2025-06-30T18:00:00Z"},
		})
		req, err := parseListRequest(c)
		require.NoError(t, err)
		require.NotNil(t, req.FromDate)
		require.NotNil(t, req.ToDate)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), req.FromDate.UTC())
		assert.Equal(t, time.Date(2025, 6, 30, 18, 0, 0, 0, time.UTC), req.ToDate.UTC())
	})

	t.Run("accepts slash dates", func(t *testing.T) {
		c := listContext(t, url.Values{"from_date": {"06/01/2025"}})
		req, err := parseListRequest(c)
		require.NoError(t, err)
		require.NotNil(t, req.FromDate)
		assert.Equal(t, 2025, req.FromDate.Year())
		assert.Equal(t, time.June, req.FromDate.Month())
	})

	t.Run("rejects garbage dates", func(t *testing.T) {
		for _, param := range []string{"from_date", "to_date"} {
			c := listContext(t, url.Values{param: {"not-a-date"}})
			_, err := parseListRequest(c)
			require.Error(t, err, param)
		}
	})

	t.Run("parses shop and status filters", func(t *testing.T) {
		c := listContext(t, url.Values{
			"shop_id": {"10"},
			"status":  {"2"},
		})
		req, err := parseListRequest(c)
		require.NoError(t, err)
		require.NotNil(t, req.ShopID)
		assert.Equal(t, int64(10), *req.ShopID)
		require.NotNil(t, req.Status)
		assert.Equal(t, domain.OrderConfirmed, *req.Status)
	})

	t.Run("rejects bad shop id and status", func(t *testing.T) {
		c := listContext(t, url.Values{"shop_id": {"abc"}})
		_, err := parseListRequest(c)
		require.Error(t, err)

		c = listContext(t, url.Values{"status": {"9"}})
		_, err = parseListRequest(c)
		require.Error(t, err)
	})
}
