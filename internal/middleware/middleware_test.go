package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionApp() *fiber.App {
	app := fiber.New()
	app.Use(EnsureSession(time.Hour))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(SessionID(c))
	})
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestEnsureSessionIssuesCookie(t *testing.T) {
	resp, err := sessionApp().Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	id := body(t, resp)
	assert.NotEmpty(t, id)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			found = true
			assert.Equal(t, id, c.Value)
		}
	}
	assert.True(t, found, "session cookie not set")
}

func TestEnsureSessionSources(t *testing.T) {
	app := sessionApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-ID", "from-header")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-header", body(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/?sessionId=from-query", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-query", body(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", body(t, resp))
}

func TestWebSocketUpgradeRejectsPlainRequests(t *testing.T) {
	app := fiber.New()
	app.Get("/ws/games/:gameId", WebSocketUpgrade(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws/games/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
