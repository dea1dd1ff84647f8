package usersink

import (
	"context"

	"github.com/apex/log"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// LogSink writes activity records to a logger. It backs the operator trail
// when no go-users repository is configured.
type LogSink struct {
	Logger log.Interface
}

var _ Sink = LogSink{}

// Log emits one info entry per record.
func (s LogSink) Log(_ context.Context, record types.ActivityRecord) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Log
	}
	fields := log.Fields{
		"verb":        record.Verb,
		"object_type": record.ObjectType,
		"object_id":   record.ObjectID,
		"channel":     record.Channel,
		"occurred_at": record.OccurredAt,
	}
	if record.ActorID != uuid.Nil {
		fields["actor_id"] = record.ActorID.String()
	}
	for k, v := range record.Data {
		fields["data."+k] = v
	}
	logger.WithFields(fields).Info("master activity")
	return nil
}
