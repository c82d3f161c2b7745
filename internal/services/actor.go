package services

import (
	"context"
	"encoding/json"

	"catering-backend/internal/logging"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
)

// Actor identifies the staff member behind a request.
type Actor struct {
	UserID int
	Role   string
	IP     string
}

func (a Actor) userRef() *int {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

func jsonString(v any) *string {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// recordAction writes an admin action log entry. Failures are logged, never
// returned; the audited change has already happened.
func recordAction(ctx context.Context, repo *repositories.AdminActionLogRepository, actor Actor,
	action, targetType string, targetID int, description string, oldValue, newValue any) {
	if repo == nil || actor.UserID == 0 {
		return
	}
	entry := &models.AdminActionLog{
		AdminUserID: actor.UserID,
		ActionType:  action,
		TargetType:  targetType,
		Description: description,
		OldValue:    jsonString(oldValue),
		NewValue:    jsonString(newValue),
	}
	if targetID != 0 {
		entry.TargetID = &targetID
	}
	if actor.IP != "" {
		ip := actor.IP
		entry.IPAddress = &ip
	}
	if err := repo.CreateActionLog(ctx, entry); err != nil {
		logging.For("Audit").WithError(err).Warnf("failed to record %s on %s %d", action, targetType, targetID)
	}
}
