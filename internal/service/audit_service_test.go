package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

func TestAuditLogWritesEntry(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)

	actor := "actor-1"
	entry, err := svc.Log(context.Background(), AuditInput{
		TenantID:      "t1",
		EntityType:    "ticket",
		EntityID:      "tck-1",
		Action:        domain.AuditActionStatusChange,
		PreviousState: map[string]any{"status": "OPEN"},
		NewState:      map[string]any{"status": "IN_PROGRESS"},
		ActorID:       &actor,
		Meta:          RequestMeta{SourceIP: "203.0.113.9", UserAgent: "curl/8.5"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.OccurredAt.IsZero())
	require.NotNil(t, entry.SourceIP)
	assert.Equal(t, "203.0.113.9", *entry.SourceIP)
	require.NotNil(t, entry.UserAgent)
	assert.Equal(t, "curl/8.5", *entry.UserAgent)
	assert.Len(t, repo.entries, 1)
}

func TestAuditLogValidation(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)

	cases := []struct {
		name  string
		input AuditInput
	}{
		{name: "missing entity type", input: AuditInput{TenantID: "t1", EntityID: "tck-1", Action: domain.AuditActionCreate}},
		{name: "missing entity id", input: AuditInput{TenantID: "t1", EntityType: "ticket", Action: domain.AuditActionCreate}},
		{name: "missing action", input: AuditInput{TenantID: "t1", EntityType: "ticket", EntityID: "tck-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Log(context.Background(), tc.input)
			require.Error(t, err)
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		})
	}
	assert.Empty(t, repo.entries, "invalid input must not reach storage")
}

func TestAuditLogBoundsRequestMeta(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)

	longIPv6 := "2001:0db8:0000:0000:0000:ff00:0042:8329:extra-junk-beyond-the-column"
	longAgent := strings.Repeat("a", 400)
	entry, err := svc.Log(context.Background(), AuditInput{
		TenantID:   "t1",
		EntityType: "ticket",
		EntityID:   "tck-1",
		Action:     domain.AuditActionResolve,
		Meta:       RequestMeta{SourceIP: longIPv6, UserAgent: longAgent},
	})
	require.NoError(t, err)
	require.NotNil(t, entry.SourceIP)
	assert.Len(t, *entry.SourceIP, domain.AuditSourceIPMaxLen)
	require.NotNil(t, entry.UserAgent)
	assert.Len(t, *entry.UserAgent, domain.AuditUserAgentMaxLen)
}

func TestAuditLogTruncationKeepsValidUTF8(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)

	// the rune straddles the byte limit; a byte-wise cut would leave an
	// invalid tail behind
	agent := strings.Repeat("a", domain.AuditUserAgentMaxLen-1) + "é"
	entry, err := svc.Log(context.Background(), AuditInput{
		TenantID:   "t1",
		EntityType: "ticket",
		EntityID:   "tck-1",
		Action:     domain.AuditActionResolve,
		Meta:       RequestMeta{UserAgent: agent},
	})
	require.NoError(t, err)
	require.NotNil(t, entry.UserAgent)
	assert.True(t, utf8.ValidString(*entry.UserAgent))
	assert.Equal(t, strings.Repeat("a", domain.AuditUserAgentMaxLen-1), *entry.UserAgent)
}

func TestAuditLogEmptyMetaStaysNil(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo)

	entry, err := svc.Log(context.Background(), AuditInput{
		TenantID:   "t1",
		EntityType: "ticket",
		EntityID:   "tck-1",
		Action:     domain.AuditActionGroupChange,
	})
	require.NoError(t, err)
	assert.Nil(t, entry.SourceIP)
	assert.Nil(t, entry.UserAgent)
}

func TestNormalizeSourceIP(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain address", raw: "198.51.100.7", want: "198.51.100.7"},
		{name: "forwarded chain keeps first hop", raw: "198.51.100.7, 10.0.0.1, 172.16.0.9", want: "198.51.100.7"},
		{name: "surrounding whitespace", raw: "  198.51.100.7  ", want: "198.51.100.7"},
		{name: "empty", raw: "", want: ""},
		{name: "overlong first hop is bounded", raw: strings.Repeat("f", 60) + ", 10.0.0.1", want: strings.Repeat("f", domain.AuditSourceIPMaxLen)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeSourceIP(tc.raw))
		})
	}
}

func TestAuditListByEntityScopesTenant(t *testing.T) {
	repo := &fakeAuditRepo{entries: []domain.AuditLogEntry{
		{ID: "aud-1", TenantID: "t1", EntityType: "ticket", EntityID: "tck-1", Action: domain.AuditActionCreate},
		{ID: "aud-2", TenantID: "t1", EntityType: "ticket", EntityID: "tck-1", Action: domain.AuditActionStatusChange},
		{ID: "aud-3", TenantID: "t2", EntityType: "ticket", EntityID: "tck-1", Action: domain.AuditActionCreate},
	}}
	svc := NewAuditService(repo)

	entries, err := svc.ListByEntity(context.Background(), "t1", "ticket", "tck-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "aud-2", entries[0].ID)

	empty, err := svc.ListByEntity(context.Background(), "t3", "ticket", "tck-1", 50, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
