package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"ngolib/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSeedStore struct {
	tags      []*types.Tag
	users     map[string]*types.User
	ngoOwners map[int64]int64
	verified  map[int64]bool
	ngoTags   map[int64][]int64
	admins    map[int64]int64
	opps      []*types.Opportunity
}

func newMemSeedStore() *memSeedStore {
	return &memSeedStore{
		users:     make(map[string]*types.User),
		ngoOwners: make(map[int64]int64),
		verified:  make(map[int64]bool),
		ngoTags:   make(map[int64][]int64),
		admins:    make(map[int64]int64),
	}
}

func (m *memSeedStore) AllTags(context.Context) ([]*types.Tag, error) { return m.tags, nil }

func (m *memSeedStore) SyncTags(_ context.Context, names []string) (int64, int64, error) {
	var inserted int64
	for _, n := range names {
		found := false
		for _, t := range m.tags {
			if t.Tag == n {
				found = true
			}
		}
		if !found {
			m.tags = append(m.tags, &types.Tag{ID: int64(len(m.tags) + 1), Tag: n})
			inserted++
		}
	}
	return inserted, 0, nil
}

func (m *memSeedStore) AttachNGOTags(_ context.Context, ngoID int64, tagIDs []int64) error {
	m.ngoTags[ngoID] = tagIDs
	return nil
}

func (m *memSeedStore) UserByEmail(_ context.Context, email string) (*types.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return u, nil
}

func (m *memSeedStore) Create(_ context.Context, user *types.User, ngo *types.NewNGO) (int64, error) {
	user.ID = int64(len(m.users) + 1)
	m.users[user.Email] = user
	if ngo != nil {
		m.ngoOwners[user.ID] = int64(len(m.ngoOwners) + 1)
	}
	return user.ID, nil
}

func (m *memSeedStore) ContactByOwner(_ context.Context, userID int64) (*types.NGOContact, error) {
	id, ok := m.ngoOwners[userID]
	if !ok {
		return nil, types.ErrNGONotFound
	}
	return &types.NGOContact{NGOID: id}, nil
}

func (m *memSeedStore) SetVerified(_ context.Context, ngoID int64, verified bool) error {
	m.verified[ngoID] = verified
	return nil
}

func (m *memSeedStore) EnsureAdmin(_ context.Context, userID int64) (int64, error) {
	if id, ok := m.admins[userID]; ok {
		return id, nil
	}
	m.admins[userID] = int64(len(m.admins) + 1)
	return m.admins[userID], nil
}

func (m *memSeedStore) CreateOpportunity(_ context.Context, opp *types.Opportunity, _ []int64) (int64, error) {
	opp.ID = int64(len(m.opps) + 1)
	m.opps = append(m.opps, opp)
	return opp.ID, nil
}

func (m *memSeedStore) DeleteSeeded(_ context.Context, prefix string) (int64, error) {
	kept := m.opps[:0]
	for _, o := range m.opps {
		if !strings.HasPrefix(o.Title, prefix) {
			kept = append(kept, o)
		}
	}
	removed := int64(len(m.opps) - len(kept))
	m.opps = kept
	return removed, nil
}

func (m *memSeedStore) stores() Stores {
	return Stores{Tags: m, Users: m, NGOs: m, Admins: m, Opportunities: m}
}

func TestRunSeedsEverything(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := newMemSeedStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	err := Run(context.Background(), logger, m.stores(), Options{
		Password:      "changeme",
		Opportunities: 5,
		Now:           now,
		Seed:          1,
	})
	require.NoError(t, err)

	assert.Len(t, m.tags, len(Vocabulary))
	assert.Len(t, m.users, len(demoAccounts))
	assert.Len(t, m.admins, 1)

	// three demo ngos, the last one waits for verification
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: false}, m.verified)
	assert.Len(t, m.ngoTags[3], 3)

	require.Len(t, m.opps, 5)
	for _, o := range m.opps {
		assert.True(t, strings.HasPrefix(o.Title, SeedTitlePrefix))
		assert.True(t, o.Start.After(now))
		assert.False(t, o.End.Before(*o.Start))
	}
}

func TestRunIsRepeatable(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := newMemSeedStore()
	opts := Options{Password: "changeme", Opportunities: 3, Reset: true}

	require.NoError(t, Run(context.Background(), logger, m.stores(), opts))
	require.NoError(t, Run(context.Background(), logger, m.stores(), opts))

	assert.Len(t, m.users, len(demoAccounts))
	assert.Len(t, m.tags, len(Vocabulary))
	assert.Len(t, m.opps, 3)
}

func TestSeedAccountsNeedsPassword(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := SeedAccounts(context.Background(), logger, newMemSeedStore().stores(), "")
	assert.Error(t, err)
}
