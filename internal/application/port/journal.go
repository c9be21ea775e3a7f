package port

//go:generate mockgen -source=journal.go -destination=mocks/mock_journal.go -package=mocks

import (
	"context"
	"time"

	"github.com/bnema/webbridge/internal/domain/entity"
)

// CallJournal records finished invocations.
// Record must not block the caller for long: it may run on the UI goroutine.
type CallJournal interface {
	Record(ctx context.Context, rec entity.CallRecord)
}

// CallJournalReader lists recorded invocations.
type CallJournalReader interface {
	Recent(ctx context.Context, limit int) ([]entity.CallRecord, error)
	RecentForSession(ctx context.Context, id entity.SessionID, limit int) ([]entity.CallRecord, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// BridgeMetrics observes bridge traffic.
type BridgeMetrics interface {
	ObserveInvocation(function string, mode entity.InvocationMode, status entity.InvocationStatus, d time.Duration)
	ObservePush()
	SetInFlight(n int)
}
