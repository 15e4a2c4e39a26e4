package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildpass/internal/application/membership/testutil"
	"guildpass/internal/domain/member"
)

func newReconciliationFixture(t *testing.T) (*syncFixture, *RunReconciliationUseCase) {
	t.Helper()
	f := newSyncFixture(t)
	uc := NewRunReconciliationUseCase(f.memberRepo, f.uc, testutil.NewMockLogger())
	return f, uc
}

func seedLinkedMemberWithEmail(t *testing.T, f *syncFixture, email string, subs []member.Subscription) *member.Member {
	t.Helper()
	m, err := member.NewLinkedMember("tnt_1", email, "discord_"+email, subs, nil)
	require.NoError(t, err)
	f.memberRepo.AddMember(m)
	return m
}

func TestRunReconciliation_CoversAllLinkedMembers(t *testing.T) {
	f, uc := newReconciliationFixture(t)
	subsA := []member.Subscription{{ID: "sub_a", PriceID: "price_a", Status: member.StatusActive}}
	subsB := []member.Subscription{{ID: "sub_b", PriceID: "price_b", Status: member.StatusActive}}
	seedLinkedMemberWithEmail(t, f, "a@example.com", subsA)
	seedLinkedMemberWithEmail(t, f, "b@example.com", subsB)

	// a keeps its subscription, b lost it.
	f.payment.SetSubscriptions("a@example.com", subsA)
	f.payment.SetSubscriptions("b@example.com", nil)

	summary, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, f.payment.Calls, "every linked member is checked")
}

func TestRunReconciliation_MemberFailureIsIsolated(t *testing.T) {
	f, uc := newReconciliationFixture(t)
	subs := []member.Subscription{{ID: "sub_a", PriceID: "price_a", Status: member.StatusActive}}
	seedLinkedMemberWithEmail(t, f, "a@example.com", subs)
	seedLinkedMemberWithEmail(t, f, "b@example.com", subs)
	seedLinkedMemberWithEmail(t, f, "c@example.com", subs)

	// b has no entry in the lookup fixture and the mock treats missing
	// emails as empty, so force a failure through an unknown-email error.
	f.payment.SetSubscriptions("a@example.com", subs)
	f.payment.SetSubscriptions("c@example.com", subs)
	f.payment.FailFor("b@example.com")

	summary, err := uc.Execute(context.Background())

	require.NoError(t, err, "per-member failures never fail the run")
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, f.payment.Calls, "members after the failure are still processed")
}

func TestRunReconciliation_EmptyPopulation(t *testing.T) {
	_, uc := newReconciliationFixture(t)

	summary, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Changed)
	assert.Equal(t, 0, summary.Failed)
}
