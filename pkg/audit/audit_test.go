package audit

import (
	"context"
	"testing"

	"go-applicant-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecord(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore("applicant-tracker", core)

	ctx := context.WithValue(context.Background(), domain.KeyRequestID, "req-1")
	l.Record(ctx, Event{Action: ActionApplicantsCleared, Count: 3})
	l.Record(ctx, Event{Action: ActionCommentAdded, Applicant: "a1", Reviewer: domain.ReviewerMiz})

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "applicants_cleared", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(3), fields["count"])
	assert.Equal(t, "req-1", fields["request_id"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	fields = entries[1].ContextMap()
	assert.Equal(t, "MIZ", fields["reviewer"])
	assert.Equal(t, "a1", fields["applicant_id"])
}

func TestDisabledAndNilLoggers(t *testing.T) {
	New("svc", false).Record(context.Background(), Event{Action: ActionApplicantDeleted})

	var l *Logger
	l.Record(context.Background(), Event{Action: ActionApplicantDeleted})
	assert.NoError(t, l.Sync())
}
