package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/config"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
	"github.com/spec-kit/workdesk/internal/stream"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// NotificationService turns domain events into per-recipient notifications.
// Each recipient gets a durable row plus a push onto their stream feed.
type NotificationService struct {
	notifications repository.NotificationRepository
	feed          *stream.Feed
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(
	notifications repository.NotificationRepository,
	feed *stream.Feed,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	cfg config.NotificationConfig,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		feed:          feed,
		dispatcher:    dispatcher,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleFanOut)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleFanOut)
	n.dispatcher.Subscribe(events.EventRoleAssigned, n.handleFanOut)
	n.dispatcher.Subscribe(events.EventResourceRequestDecided, n.handleFanOut)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordReset)
}

// ListNotifications returns the caller's durable notifications.
func (n *NotificationService) ListNotifications(ctx context.Context, sc auth.SessionContext, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	list, err := n.notifications.ListByRecipient(ctx, sc.PrincipalID, sc.OrganizationID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return list, nil
}

// MarkRead marks one of the caller's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, sc auth.SessionContext, notificationID string) error {
	if err := n.notifications.MarkRead(ctx, notificationID, sc.PrincipalID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// DrainFeed pops pending feed entries for the caller, oldest first.
func (n *NotificationService) DrainFeed(ctx context.Context, principalID string) ([][]byte, error) {
	if n.feed == nil {
		return nil, nil
	}
	return n.feed.Drain(ctx, principalID)
}

func (n *NotificationService) handleFanOut(ctx context.Context, event events.Event) error {
	subject, body := describeEvent(event)
	for _, recipient := range event.Recipients {
		n.deliver(ctx, event, recipient, subject, body)
	}
	return nil
}

func (n *NotificationService) handlePasswordReset(ctx context.Context, event events.Event) error {
	n.sendEmailStub(event)
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event, recipientID, subject, body string) {
	notification := &domain.Notification{
		OrganizationID: event.OrganizationID,
		RecipientID:    recipientID,
		Kind:           string(event.Type),
		Subject:        subject,
		Body:           body,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("notification persist failed",
			zap.String("event_type", string(event.Type)),
			zap.String("recipient_id", recipientID),
			zap.Error(err))
		return
	}

	if n.feed == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}
	if err := n.feed.Push(ctx, recipientID, payload); err != nil {
		// The durable row survives; the stream will miss this entry.
		n.logger.Warn("feed push failed",
			zap.String("recipient_id", recipientID),
			zap.Error(err))
	}
}

func (n *NotificationService) sendEmailStub(event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func describeEvent(event events.Event) (subject, body string) {
	switch p := event.Payload.(type) {
	case events.TicketStatusChangedPayload:
		subject = "Ticket status changed"
		body = fmt.Sprintf("Ticket %s moved from %s to %s", p.TicketID, p.OldStatus, p.NewStatus)
	case events.TicketAssignedPayload:
		subject = "Ticket assigned to you"
		body = fmt.Sprintf("Ticket %s was assigned to you", p.TicketID)
	case events.RoleAssignedPayload:
		subject = "Role updated"
		body = fmt.Sprintf("You are now %s in %s %s", p.Role, p.ScopeType, p.ScopeID)
	case events.ResourceRequestDecidedPayload:
		subject = "Resource request decided"
		body = fmt.Sprintf("Request %s is %s", p.RequestID, p.Status)
	default:
		subject = string(event.Type)
		body = ""
	}
	return subject, body
}
