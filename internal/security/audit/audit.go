package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/telecomplus/contracts-backend/internal/security/middleware"
)

// Logger records security-relevant actions (auth events, contract and
// catalog mutations) as structured audit entries.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID, action, resource, resourceID, status, details string) {
	requestID := middleware.RequestIDFromContext(ctx)

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLogin(ctx context.Context, userID, status string) {
	al.LogAction(ctx, userID, "login", "session", "", status, "")
}

func (al *Logger) LogRegister(ctx context.Context, userID string) {
	al.LogAction(ctx, userID, "register", "user", userID, "created", "")
}

func (al *Logger) LogContractAction(ctx context.Context, userID, action, contractID, status string) {
	al.LogAction(ctx, userID, action, "contract", contractID, status, "")
}

func (al *Logger) LogServiceAction(ctx context.Context, userID, action, serviceID, status, details string) {
	al.LogAction(ctx, userID, action, "service", serviceID, status, details)
}
