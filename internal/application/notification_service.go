package application

import (
	"context"
	"net/http"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/clinicahealth/clinica-backend/internal/domain/entity"
	"github.com/clinicahealth/clinica-backend/internal/domain/repository"
	"github.com/clinicahealth/clinica-backend/pkg/apperr"
)

const pushTimeout = 10 * time.Second

// MessagingClient is the FCM surface the dispatcher consumes. Satisfied
// by *messaging.Client; faked in tests.
type MessagingClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// PushPayload describes one push notification fan-out.
type PushPayload struct {
	Title  string
	Body   string
	Link   string
	Type   entity.NotificationType
	UserID string
}

// NotificationService dispatches push notifications and keeps the
// append-only delivery log. The FCM client is constructed once at startup
// and passed in by handle.
type NotificationService struct {
	FCM    MessagingClient
	Repo   repository.NotificationRepository
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewNotificationService(fcm MessagingClient, repo repository.NotificationRepository, rdb *redis.Client, logger *logrus.Logger) *NotificationService {
	return &NotificationService{FCM: fcm, Repo: repo, Redis: rdb, Logger: logger}
}

func keyUnread(userID string) string { return "notif:unread:" + userID }

// SendPush multicasts the payload to the given device tokens and records
// one Notification row per delivered token. A provider third-party auth
// error is a soft no-op returning an empty result; every other provider
// error is raised as a delivery failure.
func (s *NotificationService) SendPush(ctx context.Context, tokens []string, p PushPayload) (*messaging.BatchResponse, error) {
	if len(tokens) == 0 || s.FCM == nil {
		return &messaging.BatchResponse{}, nil
	}

	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-push-type": "alert"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Badge: intPtr(1), Sound: "default"},
			},
		},
	}

	sctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	resp, err := s.FCM.SendEachForMulticast(sctx, msg)
	if err != nil {
		if messaging.IsThirdPartyAuthError(err) {
			if s.Logger != nil {
				s.Logger.WithError(err).Warn("push provider auth error, skipping dispatch")
			}
			return &messaging.BatchResponse{}, nil
		}
		return nil, apperr.Wrap(http.StatusNotImplemented, "Failed to send notification", err)
	}

	if resp.SuccessCount > 0 {
		s.logDeliveries(ctx, tokens, resp, p)
	}
	return resp, nil
}

// logDeliveries appends one row per successfully delivered token.
// Best-effort: a failed insert is logged, never raised.
func (s *NotificationService) logDeliveries(ctx context.Context, tokens []string, resp *messaging.BatchResponse, p PushPayload) {
	for i, token := range tokens {
		if i < len(resp.Responses) && !resp.Responses[i].Success {
			continue
		}
		n := &entity.Notification{
			UserID:   p.UserID,
			FCMToken: token,
			Title:    p.Title,
			Message:  p.Body,
			Type:     p.Type,
			Link:     p.Link,
		}
		if err := s.Repo.Create(ctx, n); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", p.UserID).Warn("record notification failed")
		}
	}
	if s.Redis != nil {
		_ = s.Redis.Del(ctx, keyUnread(p.UserID)).Err()
	}
}

// List returns the newest notifications for the user.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	return s.Repo.ListByUser(ctx, userID, limit)
}

// UnreadCount serves the unread counter, cached briefly in Redis and
// invalidated whenever the log changes.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if s.Redis != nil {
		if v, err := s.Redis.Get(ctx, keyUnread(userID)).Int64(); err == nil {
			return v, nil
		}
	}
	n, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.Redis != nil {
		if err := s.Redis.Set(ctx, keyUnread(userID), n, time.Minute).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("cache unread count failed")
		}
	}
	return n, nil
}

// MarkRead flips one entry's read flag and drops the cached counter.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.Repo.MarkRead(ctx, userID, id); err != nil {
		if err == repository.ErrNotFound {
			return apperr.NotFound("Notification not found")
		}
		return err
	}
	if s.Redis != nil {
		_ = s.Redis.Del(ctx, keyUnread(userID)).Err()
	}
	return nil
}

func intPtr(i int) *int { return &i }
