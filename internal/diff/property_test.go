package diff_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/livequery/internal/diff"
	"github.com/roach88/livequery/internal/record"
	"github.com/roach88/livequery/internal/testutil"
)

// randomItems builds a sequence of players with distinct ids drawn from
// [1, idSpace] and short random names.
func randomItems(rng *rand.Rand, size, idSpace int) []*record.Item[testutil.Player] {
	ids := rng.Perm(idSpace)
	items := make([]*record.Item[testutil.Player], size)
	for i := 0; i < size; i++ {
		items[i] = testutil.PlayerItem(int64(ids[i]+1), randomName(rng))
	}
	return items
}

func randomName(rng *rand.Rand) string {
	return fmt.Sprintf("n%c", 'a'+rune(rng.Intn(6)))
}

func sameRows(t *testing.T, got, want []*record.Item[testutil.Player]) {
	t.Helper()
	require.Equal(t, len(want), len(got), "sequence lengths differ")
	for i := range want {
		assert.True(t, got[i].Row().Equal(want[i].Row()),
			"row %d: got %s want %s", i, got[i].Row(), want[i].Row())
	}
}

func TestScriptSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		s := randomItems(rng, rng.Intn(8), 12)
		u := randomItems(rng, rng.Intn(8), 12)

		script := diff.Compute(s, u, testutil.SamePlayer)
		applied, err := testutil.ApplyScript(s, script)
		require.NoError(t, err, "trial %d", trial)
		sameRows(t, applied, u)
	}
}

func TestScriptSoundness_WithoutIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 100; trial++ {
		s := randomItems(rng, rng.Intn(6), 10)
		u := randomItems(rng, rng.Intn(6), 10)

		script := diff.Compute(s, u, nil)
		for _, c := range script {
			assert.Contains(t, []diff.Kind{diff.Insertion, diff.Deletion}, c.Kind)
		}
		applied, err := testutil.ApplyScript(s, script)
		require.NoError(t, err, "trial %d", trial)
		sameRows(t, applied, u)
	}
}

func TestEmptiness(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 50; trial++ {
		s := randomItems(rng, rng.Intn(8), 12)
		assert.Empty(t, diff.Compute(s, s, testutil.SamePlayer), "trial %d", trial)
		assert.Empty(t, diff.Compute(s, s, nil), "trial %d", trial)
	}
}

func TestPermutationDetection(t *testing.T) {
	rng := rand.New(rand.NewSource(23))

	for trial := 0; trial < 100; trial++ {
		size := 2 + rng.Intn(6)
		s := randomItems(rng, size, size)

		u := append([]*record.Item[testutil.Player](nil), s...)
		rng.Shuffle(len(u), func(i, j int) { u[i], u[j] = u[j], u[i] })

		// A permutation merges every deletion/insertion pair: the script
		// holds only moves - plus in-place pairs that surface as updates
		// with nothing changed - and no raw insertions or deletions.
		script := diff.Compute(s, u, testutil.SamePlayer)
		for _, c := range script {
			assert.Contains(t, []diff.Kind{diff.Move, diff.Update}, c.Kind, "trial %d: %v", trial, script)
			assert.Empty(t, c.ChangedColumns, "trial %d", trial)
		}
	}
}

func TestUpdateDetection(t *testing.T) {
	rng := rand.New(rand.NewSource(31))

	for trial := 0; trial < 100; trial++ {
		size := 1 + rng.Intn(6)
		s := randomItems(rng, size, size)

		// Same ids in the same positions, at least one changed name.
		u := make([]*record.Item[testutil.Player], size)
		changed := false
		for i, it := range s {
			rec, err := it.Record()
			require.NoError(t, err)
			name := randomName(rng)
			if name != rec.Name {
				changed = true
			}
			u[i] = testutil.PlayerItem(rec.ID, name)
		}
		if !changed {
			continue
		}

		script := diff.Compute(s, u, testutil.SamePlayer)
		require.NotEmpty(t, script, "trial %d", trial)
		for _, c := range script {
			assert.Equal(t, diff.Update, c.Kind, "trial %d: %v", trial, script)
			require.Len(t, c.ChangedColumns, 1)
			assert.Contains(t, c.ChangedColumns, "name")
		}
	}
}

func TestUpdatePlacement(t *testing.T) {
	rng := rand.New(rand.NewSource(47))

	for trial := 0; trial < 100; trial++ {
		s := randomItems(rng, rng.Intn(8), 12)
		u := randomItems(rng, rng.Intn(8), 12)

		script := diff.Compute(s, u, testutil.SamePlayer)
		seenUpdate := false
		for _, c := range script {
			if c.Kind == diff.Update {
				seenUpdate = true
				continue
			}
			assert.False(t, seenUpdate, "trial %d: structural change after update: %v", trial, script)
		}
	}
}
