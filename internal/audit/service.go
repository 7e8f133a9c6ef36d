package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recorder is what screens call after every mutation attempt.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type Service struct {
	repo     Repository
	log      *slog.Logger
	location *time.Location
	now      func() time.Time
}

func NewService(repo Repository, log *slog.Logger, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, log: log, location: location, now: time.Now}
}

// Record stores the entry. Failures are logged and never reach the caller.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().In(s.location)
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeSuccess
	}
	entry.Message = strings.TrimSpace(entry.Message)

	// The user action already finished; its cancellation must not drop the record.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Error("audit record: db error",
			slog.String("resource", entry.Resource),
			slog.String("action", entry.Action),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Entry, int64, error) {
	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Nop discards entries; it is used when no MongoDB is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
