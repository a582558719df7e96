package rayid

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(New())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(Get(c)) })
	return app
}

func TestNew_GeneratesID(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	id := resp.Header.Get(Header)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestNew_KeepsCallerID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(Header, "upstream-42")
	resp, err := newApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "upstream-42", resp.Header.Get(Header))
}
