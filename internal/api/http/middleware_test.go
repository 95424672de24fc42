package http

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestRequestTimeoutDeadlineReachesHandlers(t *testing.T) {
	app := fiber.New()
	app.Use(requestTimeoutMiddleware(time.Second))

	var hasDeadline bool
	app.Get("/check", func(c *fiber.Ctx) error {
		// Handlers hand c.UserContext() to services; the configured
		// timeout must be visible there.
		_, hasDeadline = c.UserContext().Deadline()
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/check", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if !hasDeadline {
		t.Error("request context must carry the configured deadline")
	}
}

func TestRequestTimeoutCancelsRequestContext(t *testing.T) {
	app := fiber.New()
	app.Use(requestTimeoutMiddleware(time.Nanosecond))

	var ctxErr error
	app.Get("/check", func(c *fiber.Ctx) error {
		<-c.UserContext().Done()
		ctxErr = c.UserContext().Err()
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/check", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()
	if !errors.Is(ctxErr, context.DeadlineExceeded) {
		t.Errorf("context error = %v, want DeadlineExceeded", ctxErr)
	}
}
