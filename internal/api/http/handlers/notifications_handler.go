package handlers

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/config"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// NotificationsHandler manages notification listing and the live stream.
type NotificationsHandler struct {
	service *service.NotificationService
	cfg     config.NotificationConfig
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService, cfg config.NotificationConfig) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService, cfg: cfg}
}

// ListNotifications GET /notifications.
func (h *NotificationsHandler) ListNotifications(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	unreadOnly := c.Query("unread") == "true"

	list, err := h.service.ListNotifications(c.UserContext(), *sc, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		items = append(items, notificationResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.MarkRead(c.UserContext(), *sc, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}

// Stream GET /notifications/stream. Server-sent events; the client passes its
// token as a query parameter because EventSource cannot set headers. The
// stream polls the feed and closes itself after a run of idle polls so
// abandoned connections do not pile up.
func (h *NotificationsHandler) Stream(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	principalID := sc.PrincipalID
	pollInterval := time.Duration(h.cfg.StreamPollSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	maxIdlePolls := h.cfg.StreamMaxIdlePolls
	if maxIdlePolls <= 0 {
		maxIdlePolls = 150
	}
	svc := h.service

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The fiber context is recycled once this handler returns; the
		// stream loop must not touch it.
		ctx := context.Background()
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		idle := 0
		for range ticker.C {
			entries, err := svc.DrainFeed(ctx, principalID)
			if err != nil {
				return
			}
			if len(entries) == 0 {
				idle++
				if idle >= maxIdlePolls {
					fmt.Fprintf(w, "event: timeout\ndata: {}\n\n")
					_ = w.Flush()
					return
				}
				// Heartbeat comment keeps intermediaries from closing us.
				fmt.Fprintf(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
				continue
			}
			idle = 0
			for _, entry := range entries {
				fmt.Fprintf(w, "event: notification\ndata: %s\n\n", entry)
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		Subject:   n.Subject,
		Body:      n.Body,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
