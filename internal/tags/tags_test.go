package tags

import (
	"encoding/json"
	"testing"

	"ngolib/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vocabulary = []*types.Tag{
	{ID: 1, Tag: "Environment"},
	{ID: 2, Tag: "Education"},
	{ID: 3, Tag: "Health"},
}

func TestAggregate(t *testing.T) {
	pairs := []*types.TagPair{
		{EntityID: 10, TagID: 2},
		{EntityID: 10, TagID: 1},
		{EntityID: 11, TagID: 3},
		{EntityID: 11, TagID: 99},
	}

	idx := Aggregate(vocabulary, pairs)

	assert.Equal(t, []string{"Education", "Environment"}, idx.For(10))
	assert.Equal(t, []string{"Health"}, idx.For(11))
}

func TestForWithoutPairsIsEmptyNotNil(t *testing.T) {
	idx := Aggregate(vocabulary, nil)

	got := idx.For(42)
	require.NotNil(t, got)
	assert.Empty(t, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestApplyNGOs(t *testing.T) {
	ngos := []*types.NGO{{ID: 1}, {ID: 2}}
	idx := Aggregate(vocabulary, []*types.TagPair{{EntityID: 1, TagID: 3}})

	idx.ApplyNGOs(ngos)

	assert.Equal(t, []string{"Health"}, ngos[0].Tags)
	assert.Equal(t, []string{}, ngos[1].Tags)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"Environment", "Education", "Health"}, Names(vocabulary))
	assert.Equal(t, []string{}, Names(nil))
}

func TestIDs(t *testing.T) {
	ids, unknown := IDs(vocabulary, []string{"Health", "Sports", "Health", "Environment"})

	assert.Equal(t, []int64{3, 1}, ids)
	assert.Equal(t, []string{"Sports"}, unknown)
}
