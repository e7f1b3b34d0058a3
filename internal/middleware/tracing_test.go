package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stackit/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingMiddleware(t *testing.T) {
	// Sampler ratio zero keeps spans non-recording so nothing is exported,
	// while trace IDs are still generated.
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "stackit-test",
		Environment:  "test",
		Enabled:      true,
		Exporter:     "stdout",
		SamplerRatio: 0,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(TracingMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, c.Locals("traceID"))
		assert.NotEmpty(t, c.Locals("spanID"))
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	traceID := resp.Header.Get("X-Trace-ID")
	assert.Regexp(t, "^[0-9a-f]{32}$", traceID)
	assert.NotEqual(t, "00000000000000000000000000000000", traceID)
}

func TestTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName: "stackit-test",
		Enabled:     false,
	})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
