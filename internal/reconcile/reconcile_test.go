package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/model"
)

func TestMergeRemoteWins(t *testing.T) {
	local := []model.Item{
		{ID: "1", Timestamp: 100, ItemName: "Wallet"},
	}
	remote := []model.Item{
		{ID: "1", Timestamp: 100, ItemName: "Wallet", Location: "Lib"},
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, "Lib", merged[0].Location)
	assert.Equal(t, "Wallet", merged[0].ItemName)
}

func TestMergePreservesUnmatchedLocal(t *testing.T) {
	local := []model.Item{
		{ID: "1", Timestamp: 100, ItemName: "Wallet"},
		{ID: "2", Timestamp: 200, ItemName: "Umbrella"},
	}
	remote := []model.Item{
		{ID: "1", Timestamp: 100, ItemName: "Wallet"},
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 2)
	assert.Equal(t, "Umbrella", merged[1].ItemName)
}

func TestMergePendingMatchedByTimestamp(t *testing.T) {
	local := []model.Item{
		{Timestamp: 500, ItemName: "Phone"}, // pending, no id yet
	}
	remote := []model.Item{
		{ID: "9", Timestamp: 500, ItemName: "Phone"},
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, "9", merged[0].ID)
	assert.Equal(t, "Phone", merged[0].ItemName)
}

func TestMergeAmbiguousTimestampLeavesBoth(t *testing.T) {
	// Two distinct pending items created in the same millisecond must not
	// be collapsed into one by the timestamp heuristic.
	local := []model.Item{
		{Timestamp: 500, ItemName: "Phone"},
		{Timestamp: 500, ItemName: "Keys"},
	}
	remote := []model.Item{
		{ID: "9", Timestamp: 500, ItemName: "Phone"},
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 3)
	names := []string{merged[0].ItemName, merged[1].ItemName, merged[2].ItemName}
	assert.Contains(t, names, "Keys")
}

func TestMergeAppendsNewRemote(t *testing.T) {
	local := []model.Item{
		{ID: "1", Timestamp: 100, ItemName: "Wallet"},
	}
	remote := []model.Item{
		{ID: "1", Timestamp: 100, ItemName: "Wallet"},
		{ID: "2", Timestamp: 300, ItemName: "Scarf"},
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 2)
	assert.Equal(t, "Scarf", merged[1].ItemName)
}

func TestMergeEmptySides(t *testing.T) {
	remote := []model.Item{{ID: "1", Timestamp: 100}}

	assert.Len(t, Merge(nil, remote), 1)
	assert.Len(t, Merge(remote, nil), 1)
	assert.Empty(t, Merge(nil, nil))
}

func TestMergeKeepsLocalImagesWhenRemoteOmits(t *testing.T) {
	local := []model.Item{
		{ID: "1", Timestamp: 100, Images: []string{"https://m.example.com/a.jpg"}},
	}
	remote := []model.Item{
		{ID: "1", Timestamp: 100, Location: "Lib"},
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, []string{"https://m.example.com/a.jpg"}, merged[0].Images)
}

func TestMergeRemoteLifecycleFlagsWin(t *testing.T) {
	local := []model.Item{
		{ID: "1", Timestamp: 100},
	}
	remote := []model.Item{
		{ID: "1", Timestamp: 100, Returned: true, ReturnedDate: 900},
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 1)
	assert.True(t, merged[0].Returned)
	assert.EqualValues(t, 900, merged[0].ReturnedDate)
}

func TestDedupCollapsesCompositeKey(t *testing.T) {
	items := []model.Item{
		{ID: "1", Timestamp: 100, ItemName: "first"},
		{ID: "1", Timestamp: 100, ItemName: "second"},
		{ID: "1", Timestamp: 200, ItemName: "same id, other ts"},
	}

	out := Dedup(items)

	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].ItemName)
}

func TestDedupIdempotent(t *testing.T) {
	items := []model.Item{
		{ID: "1", Timestamp: 100},
		{ID: "1", Timestamp: 100},
		{ID: "2", Timestamp: 100},
	}

	once := Dedup(items)
	twice := Dedup(once)

	assert.Equal(t, once, twice)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	local := []model.Item{{ID: "1", Timestamp: 100, ItemName: "Wallet"}}
	remote := []model.Item{{ID: "1", Timestamp: 100, ItemName: "Wallet", Location: "Lib"}}

	Merge(local, remote)

	assert.Empty(t, local[0].Location, "local input must stay untouched")
}
