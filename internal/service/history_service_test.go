package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

func statusPtr(s domain.TicketStatus) *domain.TicketStatus {
	return &s
}

func strPtr(s string) *string {
	return &s
}

func newHistoryServiceForTest(history *fakeHistoryRepo, actors *fakeActorRepo, now time.Time) *HistoryService {
	deps := HistoryDependencies{
		HistoryRepo: history,
		Now:         func() time.Time { return now },
	}
	if actors != nil {
		deps.ActorRepo = actors
	}
	return NewHistoryService(deps)
}

func TestHistoryRecordStatusChange(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	history := &fakeHistoryRepo{}
	history.entries = append(history.entries, domain.StatusHistoryEntry{
		ID:        "hist-0",
		TenantID:  "t1",
		TicketID:  "tck-1",
		Kind:      domain.TransitionKindStatus,
		NewStatus: statusPtr(domain.TicketStatusOpen),
		ChangedAt: now.Add(-90 * time.Minute),
	})
	svc := newHistoryServiceForTest(history, &fakeActorRepo{actors: map[string]*domain.Actor{
		"actor-1": {ID: "actor-1", TenantID: "t1", DisplayName: "Dana Reeve"},
	}}, now)

	entry, err := svc.Record(context.Background(), RecordInput{
		TenantID:       "t1",
		TicketID:       "tck-1",
		Kind:           domain.TransitionKindStatus,
		PreviousStatus: statusPtr(domain.TicketStatusOpen),
		NewStatus:      statusPtr(domain.TicketStatusInProgress),
		ActorID:        "actor-1",
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.NotEmpty(t, entry.ID)
	require.NotNil(t, entry.TimeInStatus)
	assert.Equal(t, 90*time.Minute, *entry.TimeInStatus)
	require.NotNil(t, entry.ChangedByName)
	assert.Equal(t, "Dana Reeve", *entry.ChangedByName)
	assert.Len(t, history.entries, 2)
}

func TestHistoryRecordFirstEntryHasNoDuration(t *testing.T) {
	history := &fakeHistoryRepo{}
	svc := newHistoryServiceForTest(history, nil, time.Now())

	entry, err := svc.Record(context.Background(), RecordInput{
		TenantID:  "t1",
		TicketID:  "tck-1",
		Kind:      domain.TransitionKindStatus,
		NewStatus: statusPtr(domain.TicketStatusOpen),
		ActorID:   "actor-1",
	})
	require.NoError(t, err)
	assert.Nil(t, entry.TimeInStatus)
}

func TestHistoryRecordDurationLookupSoftFails(t *testing.T) {
	history := &fakeHistoryRepo{latestErr: errors.New("connection reset")}
	svc := newHistoryServiceForTest(history, nil, time.Now())

	entry, err := svc.Record(context.Background(), RecordInput{
		TenantID:       "t1",
		TicketID:       "tck-1",
		Kind:           domain.TransitionKindStatus,
		PreviousStatus: statusPtr(domain.TicketStatusOpen),
		NewStatus:      statusPtr(domain.TicketStatusInProgress),
		ActorID:        "actor-1",
	})
	require.NoError(t, err)
	assert.Nil(t, entry.TimeInStatus)
	assert.Len(t, history.entries, 1)
}

func TestHistoryRecordNegativeElapsedDropsDuration(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	history := &fakeHistoryRepo{}
	history.entries = append(history.entries, domain.StatusHistoryEntry{
		ID:        "hist-0",
		TenantID:  "t1",
		TicketID:  "tck-1",
		Kind:      domain.TransitionKindStatus,
		NewStatus: statusPtr(domain.TicketStatusOpen),
		ChangedAt: now.Add(time.Hour),
	})
	svc := newHistoryServiceForTest(history, nil, now)

	entry, err := svc.Record(context.Background(), RecordInput{
		TenantID:       "t1",
		TicketID:       "tck-1",
		Kind:           domain.TransitionKindStatus,
		PreviousStatus: statusPtr(domain.TicketStatusOpen),
		NewStatus:      statusPtr(domain.TicketStatusInProgress),
		ActorID:        "actor-1",
	})
	require.NoError(t, err)
	assert.Nil(t, entry.TimeInStatus)
}

func TestHistoryRecordAssignmentChange(t *testing.T) {
	history := &fakeHistoryRepo{}
	svc := newHistoryServiceForTest(history, nil, time.Now())

	entry, err := svc.Record(context.Background(), RecordInput{
		TenantID:         "t1",
		TicketID:         "tck-1",
		Kind:             domain.TransitionKindAssignment,
		PreviousAssignee: strPtr("agent-1"),
		NewAssignee:      strPtr("agent-2"),
		ActorID:          "actor-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionKindAssignment, entry.Kind)
	assert.Nil(t, entry.TimeInStatus)
	assert.Nil(t, entry.NewStatus)
	require.NotNil(t, entry.NewAssignee)
	assert.Equal(t, "agent-2", *entry.NewAssignee)
}

func TestHistoryRecordValidation(t *testing.T) {
	history := &fakeHistoryRepo{}
	svc := newHistoryServiceForTest(history, nil, time.Now())

	cases := []struct {
		name  string
		input RecordInput
	}{
		{
			name: "missing ticket id",
			input: RecordInput{
				TenantID:  "t1",
				Kind:      domain.TransitionKindStatus,
				NewStatus: statusPtr(domain.TicketStatusOpen),
				ActorID:   "actor-1",
			},
		},
		{
			name: "missing actor id",
			input: RecordInput{
				TenantID:  "t1",
				TicketID:  "tck-1",
				Kind:      domain.TransitionKindStatus,
				NewStatus: statusPtr(domain.TicketStatusOpen),
			},
		},
		{
			name: "status change without new status",
			input: RecordInput{
				TenantID: "t1",
				TicketID: "tck-1",
				Kind:     domain.TransitionKindStatus,
				ActorID:  "actor-1",
			},
		},
		{
			name: "unknown kind",
			input: RecordInput{
				TenantID: "t1",
				TicketID: "tck-1",
				Kind:     domain.TransitionKind("MUTATION"),
				ActorID:  "actor-1",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.input)
			require.Error(t, err)
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		})
	}
	assert.Empty(t, history.entries, "invalid input must not reach storage")
}

func TestHistoryListMostRecentFirst(t *testing.T) {
	now := time.Now()
	history := &fakeHistoryRepo{entries: []domain.StatusHistoryEntry{
		{ID: "hist-1", TenantID: "t1", TicketID: "tck-1", Kind: domain.TransitionKindStatus, NewStatus: statusPtr(domain.TicketStatusOpen), ChangedAt: now.Add(-2 * time.Hour)},
		{ID: "hist-2", TenantID: "t1", TicketID: "tck-1", Kind: domain.TransitionKindStatus, NewStatus: statusPtr(domain.TicketStatusInProgress), ChangedAt: now.Add(-time.Hour)},
		{ID: "hist-3", TenantID: "t2", TicketID: "tck-1", Kind: domain.TransitionKindStatus, NewStatus: statusPtr(domain.TicketStatusOpen), ChangedAt: now},
	}}
	svc := newHistoryServiceForTest(history, nil, now)

	entries, err := svc.History(context.Background(), "t1", "tck-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2, "entries from other tenants stay invisible")
	assert.Equal(t, "hist-2", entries[0].ID)
	assert.Equal(t, "hist-1", entries[1].ID)
}

func TestHistoryListEmptyTicket(t *testing.T) {
	svc := newHistoryServiceForTest(&fakeHistoryRepo{}, nil, time.Now())

	entries, err := svc.History(context.Background(), "t1", "tck-none", 50, 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
