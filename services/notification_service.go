package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/notification"
	"fitQuestAPI/internal/types/reminder"
)

type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider injects the real FCM provider from main.go.
func (s *NotificationService) SetPushProvider(provider PushProvider) {
	s.pushProvider = provider
}

func (s *NotificationService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE clerk_id = $1", clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	return userID, nil
}

// ShowReminder is the scheduler's delivery capability: it pushes the
// reminder's display fields to the user's registered devices. The scheduler
// logs and swallows whatever comes back, so failures here never disturb
// timer bookkeeping.
func (s *NotificationService) ShowReminder(ctx context.Context, r reminder.Reminder) error {
	prefs, err := s.GetPreferencesByUUID(ctx, r.UserID)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	if !prefs.PushEnabled || len(prefs.DeviceTokens) == 0 || s.pushProvider == nil {
		log.Printf("Skipping reminder push: Enabled=%v, Tokens=%d, ProviderSet=%v",
			prefs.PushEnabled, len(prefs.DeviceTokens), s.pushProvider != nil)
		return nil
	}

	data := map[string]any{"reminder_id": r.ID}
	if r.Tag != nil {
		data["tag"] = *r.Tag
	}
	if r.Icon != nil {
		data["icon"] = *r.Icon
	}
	if r.Badge != nil {
		data["badge"] = *r.Badge
	}

	return s.pushProvider.SendPush(ctx, prefs.DeviceTokens, r.Title, r.Body, data)
}

// PushToUser sends an ad-hoc push, used by in-app triggers such as
// objective-completed announcements.
func (s *NotificationService) PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]any) error {
	prefs, err := s.GetPreferencesByUUID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	if enabled, ok := prefs.EnabledTypes["social"]; ok && !enabled {
		return nil // user opted out of this type, silently skip
	}
	if !prefs.PushEnabled || len(prefs.DeviceTokens) == 0 || s.pushProvider == nil {
		return nil
	}

	return s.pushProvider.SendPush(ctx, prefs.DeviceTokens, title, body, data)
}

func (s *NotificationService) GetPreferences(ctx context.Context, clerkID string) (*notification.NotificationPreferences, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.GetPreferencesByUUID(ctx, userID)
}

func (s *NotificationService) GetPreferencesByUUID(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	query := `
		SELECT id, user_id, push_enabled, enabled_types, device_tokens, created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`

	prefs := &notification.NotificationPreferences{}
	var enabledTypesStr, deviceTokensStr string

	err := s.db.QueryRow(ctx, query, userID).Scan(
		&prefs.ID, &prefs.UserID, &prefs.PushEnabled,
		&enabledTypesStr, &deviceTokensStr, &prefs.CreatedAt, &prefs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.createDefaultPreferences(ctx, userID)
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	json.Unmarshal([]byte(enabledTypesStr), &prefs.EnabledTypes)
	json.Unmarshal([]byte(deviceTokensStr), &prefs.DeviceTokens)
	return prefs, nil
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, clerkID string, req *notification.UpdatePreferencesRequest) (*notification.NotificationPreferences, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.PushEnabled != nil {
		_, err = s.db.Exec(ctx,
			"UPDATE notification_preferences SET push_enabled = $2, updated_at = NOW() WHERE user_id = $1",
			userID, *req.PushEnabled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update preferences: %w", err)
		}
	}
	if req.EnabledTypes != nil {
		typesJSON, _ := json.Marshal(req.EnabledTypes)
		_, err = s.db.Exec(ctx,
			"UPDATE notification_preferences SET enabled_types = $2, updated_at = NOW() WHERE user_id = $1",
			userID, typesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update preferences: %w", err)
		}
	}

	return s.GetPreferencesByUUID(ctx, userID)
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req notification.RegisterDeviceRequest) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	prefs, err := s.GetPreferencesByUUID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}

	tokenExists := false
	for i, token := range prefs.DeviceTokens {
		if token.Token == req.Token {
			prefs.DeviceTokens[i].LastUsed = time.Now()
			tokenExists = true
			break
		}
	}
	if !tokenExists {
		prefs.DeviceTokens = append(prefs.DeviceTokens, notification.DeviceToken{
			Token:    req.Token,
			Platform: req.Platform,
			AddedAt:  time.Now(),
			LastUsed: time.Now(),
		})
	}

	tokensJSON, _ := json.Marshal(prefs.DeviceTokens)
	_, err = s.db.Exec(ctx,
		"UPDATE notification_preferences SET device_tokens = $2, updated_at = NOW() WHERE user_id = $1",
		userID, tokensJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	return nil
}

func (s *NotificationService) createDefaultPreferences(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	query := `
		INSERT INTO notification_preferences (id, user_id, push_enabled, enabled_types, device_tokens, created_at, updated_at)
		VALUES ($1, $2, true, '{}', '[]', NOW(), NOW())
		RETURNING id, user_id, push_enabled, created_at, updated_at
	`

	prefs := &notification.NotificationPreferences{
		EnabledTypes: map[string]bool{},
	}
	err := s.db.QueryRow(ctx, query, uuid.New(), userID).Scan(
		&prefs.ID, &prefs.UserID, &prefs.PushEnabled, &prefs.CreatedAt, &prefs.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}
	return prefs, nil
}

// Mock provider for tests and local runs without FCM credentials.

type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: Sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
