// Package audit records destructive and state changing actions on applicants.
package audit

import (
	"context"
	"time"

	"go-applicant-tracker/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Action is the kind of audited change
type Action string

const (
	ActionApplicantCreated    Action = "applicant_created"
	ActionApplicantDeleted    Action = "applicant_deleted"
	ActionApplicantsDeleted   Action = "applicants_bulk_deleted"
	ActionApplicantsCleared   Action = "applicants_cleared"
	ActionCommentAdded        Action = "comment_added"
	ActionResumeUploaded      Action = "resume_uploaded"
	ActionUploadLimited       Action = "upload_rate_limited"
	ActionResumeRejected      Action = "resume_rejected"
	ActionResumeDeleted       Action = "resume_deleted"
	ActionResumeCleanupFailed Action = "resume_cleanup_failed"
)

// Event is one audited change
type Event struct {
	Action    Action
	Applicant string
	Reviewer  domain.Reviewer
	Count     int64
	IP        string
	Details   map[string]any
}

// Logger writes audit events through zap
type Logger struct {
	zap     *zap.Logger
	service string
}

// New builds a JSON audit logger on stdout. When enabled is false every
// event is discarded.
func New(service string, enabled bool) *Logger {
	if !enabled {
		return &Logger{zap: zap.NewNop(), service: service}
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return &Logger{zap: logger, service: service}
}

// NewWithCore is used by tests to capture events
func NewWithCore(service string, core zapcore.Core) *Logger {
	return &Logger{zap: zap.New(core), service: service}
}

// Record logs e. Deletions are logged at warn level.
func (l *Logger) Record(ctx context.Context, e Event) {
	if l == nil {
		return
	}

	level := zapcore.InfoLevel
	switch e.Action {
	case ActionApplicantDeleted, ActionApplicantsDeleted, ActionApplicantsCleared, ActionUploadLimited, ActionResumeRejected, ActionResumeCleanupFailed:
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", l.service),
		zap.String("action", string(e.Action)),
		zap.Time("at", time.Now().UTC()),
	}
	if id, ok := ctx.Value(domain.KeyRequestID).(string); ok && id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sub, ok := ctx.Value(domain.KeySubject).(string); ok && sub != "" {
		fields = append(fields, zap.String("subject", sub))
	}
	if e.Applicant != "" {
		fields = append(fields, zap.String("applicant_id", e.Applicant))
	}
	if e.Reviewer != "" {
		fields = append(fields, zap.String("reviewer", string(e.Reviewer)))
	}
	if e.Count > 0 {
		fields = append(fields, zap.Int64("count", e.Count))
	}
	if e.IP != "" {
		fields = append(fields, zap.String("ip", e.IP))
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}

	l.zap.Log(level, string(e.Action), fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zap.Sync()
}
