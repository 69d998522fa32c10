package services

import (
	"context"

	"github.com/kdd-community/website-backend/internal/diff"
	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/repositories"
	"github.com/kdd-community/website-backend/internal/utils"
	"github.com/kdd-community/website-backend/pkg/identity"
)

// LogService exposes the audit log to the admin console
type LogService interface {
	GetLogs(ctx context.Context, token string, limit int) ([]*models.LogEntry, models.Result)
}

type logService struct {
	logs     repositories.LogRepository
	identity identity.Provider
}

// NewLogService creates a new LogService implementation
func NewLogService(logs repositories.LogRepository, provider identity.Provider) LogService {
	return &logService{
		logs:     logs,
		identity: provider,
	}
}

const defaultLogLimit = 100

// GetLogs returns the most recent entries, newest first, with every stored
// timestamp representation serialized to an ISO instant string.
func (s *logService) GetLogs(ctx context.Context, token string, limit int) ([]*models.LogEntry, models.Result) {
	check := identity.VerifyAdmin(ctx, s.identity, token)
	if !check.Valid {
		return nil, models.Failure(check.Message)
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}

	entries, err := s.logs.FindRecent(ctx, limit)
	if err != nil {
		return nil, models.Failure(utils.ErrorMessage(err, "Failed to fetch logs"))
	}

	for _, entry := range entries {
		if normalized, ok := diff.Normalize(entry.Data).(map[string]interface{}); ok {
			entry.Data = normalized
		}
	}
	return entries, models.Ok("Logs loaded")
}
