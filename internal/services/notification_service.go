package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/repository"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrNotRecipient          = errors.New("only the recipient can access this notification")
	ErrInvalidNotification   = errors.New("notification type is invalid")
	ErrNotificationTitle     = errors.New("notification title is required")
	ErrRecipientNotFound     = errors.New("notification recipient does not exist")
	ErrNotificationRecipient = errors.New("notification user is required")
)

// NotificationService scopes every notification read and write to its recipient.
type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
	}
}

// CreateNotificationInput represents a notification sent by a client.
type CreateNotificationInput struct {
	Title   string
	Message string
	Type    models.NotificationType
	UserID  uint64
}

// ListNotifications lists the actor's own notifications
func (s *NotificationService) ListNotifications(actorID uint64, q utils.ListQuery) ([]models.Notification, int64, error) {
	items, total, err := s.repo.ListForUser(actorID, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, total, nil
}

// GetNotification returns a notification addressed to the actor
func (s *NotificationService) GetNotification(id, actorID uint64, populate ...string) (*models.Notification, error) {
	n, err := s.repo.FindByID(id, populate...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	if n.UserID != actorID {
		return nil, ErrNotRecipient
	}
	return n, nil
}

// CreateNotification stores a notification for an existing user
func (s *NotificationService) CreateNotification(input CreateNotificationInput) (*models.Notification, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrNotificationTitle
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidNotification
	}
	if input.UserID == 0 {
		return nil, ErrNotificationRecipient
	}

	count, err := s.userRepo.CountByIDs([]uint64{input.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to verify recipient: %w", err)
	}
	if count == 0 {
		return nil, ErrRecipientNotFound
	}

	n := &models.Notification{
		Title:   title,
		Message: input.Message,
		Type:    input.Type,
		UserID:  input.UserID,
	}
	if err := s.repo.Create(n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	created, err := s.repo.FindByID(n.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	return created, nil
}

// SetRead marks a notification read or unread for its recipient
func (s *NotificationService) SetRead(id, actorID uint64, read bool) (*models.Notification, error) {
	n, err := s.GetNotification(id, actorID)
	if err != nil {
		return nil, err
	}
	if n.Read == read {
		return n, nil
	}

	n.Read = read
	if err := s.repo.Update(n); err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return n, nil
}

// DeleteNotification deletes a notification for its recipient
func (s *NotificationService) DeleteNotification(id, actorID uint64) error {
	if _, err := s.GetNotification(id, actorID); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}
