package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sengwoong/lecture-server/internal/bootstrap"
	"github.com/sengwoong/lecture-server/internal/events"
)

// ConsumeLeaveDecided mirrors terminal leave decisions into the audit
// trail. Decisions are idempotent on replay, so a redelivered message
// only produces a duplicate audit line.
func ConsumeLeaveDecided(
	ctx context.Context,
	reader *kafkago.Reader,
	auditLogger bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_decided")
	log.Info("leave decided consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave decided consumer stopped")
				return
			}
			log.Error("fetch leave decided message failed", zap.Error(err))
			continue
		}

		var event events.LeaveDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		auditLogger.Log(ctx, bootstrap.AuditLog{
			Action:  "LEAVE_DECIDED",
			Message: "Leave request reached a terminal decision",
			Meta: map[string]any{
				"leave_id":   event.LeaveID,
				"record_id":  event.RecordID,
				"course_id":  event.CourseID,
				"student_id": event.StudentID,
				"decision":   event.Decision,
				"decider_id": event.DeciderID,
				"decided_at": event.DecidedAt,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave decided message failed", zap.Error(err))
			continue
		}

		log.Info("leave decision audited",
			zap.String("leave_id", event.LeaveID),
			zap.String("decision", event.Decision),
		)
	}
}
