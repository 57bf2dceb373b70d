package sections

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/types"
)

func newLoadedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(zap.NewNop())
	require.NoError(t, store.Load([]types.Section{
		{ID: "a", Title: "Experience", Content: "Did work"},
		{ID: "b", Title: "Education", Content: "BSc"},
	}))
	return store
}

func TestStore_LoadAssignsOriginalContent(t *testing.T) {
	store := NewStore(nil)
	require.NoError(t, store.Load([]types.Section{
		{ID: "a", Title: "Experience", Content: "cleaned", OriginalContent: "verbatim"},
		{ID: "b", Title: "Education", Content: "BSc"},
	}))

	got := store.Sections()
	assert.Equal(t, "verbatim", got[0].OriginalContent)
	assert.Equal(t, "BSc", got[1].OriginalContent)
}

func TestStore_LoadRejectsInvalidSets(t *testing.T) {
	store := NewStore(nil)

	err := store.Load([]types.Section{{ID: "a"}, {ID: "a"}})
	var invalid *InvalidSetError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "duplicate")

	err = store.Load([]types.Section{{ID: ""}})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, store.Len())
}

func TestStore_BulkResponseScenario(t *testing.T) {
	store := newLoadedStore(t)

	report := store.ApplyResult(ContentMap(store.Sections(), map[string]string{"a": "New content"}))

	got := store.Sections()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, types.SectionSet(got).IDs())
	assert.Equal(t, "New content", got[0].Content)
	assert.Equal(t, "Did work", got[0].OriginalContent)
	assert.Equal(t, "BSc", got[1].Content)
	assert.Equal(t, []string{"b"}, report.Missing)
}

func TestStore_ProposalLifecycle(t *testing.T) {
	store := newLoadedStore(t)
	assert.False(t, store.HasProposal("a"))

	require.NoError(t, store.SetProposal(types.RevisionProposal{
		SectionID:    "a",
		Professional: "Delivered work",
		ATSOptimized: "Delivered Go services",
	}))
	assert.True(t, store.HasProposal("a"))
	assert.Equal(t, []string{"a"}, store.PendingProposals())

	// Pending proposal does not touch content
	sec, err := store.Section("a")
	require.NoError(t, err)
	assert.Equal(t, "Did work", sec.Content)

	applied, err := store.ApplyProposal("a", types.ChoiceATSOptimized)
	require.NoError(t, err)
	assert.Equal(t, "Delivered Go services", applied.Content)
	assert.Equal(t, "Did work", applied.OriginalContent)
	assert.False(t, store.HasProposal("a"))

	_, err = store.ApplyProposal("a", types.ChoiceProfessional)
	var noProposal *NoProposalError
	assert.ErrorAs(t, err, &noProposal)
}

func TestStore_SetProposalForChecksBase(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		base    string
		wantErr error
		stored  bool
	}{
		{name: "unchanged section", id: "a", base: "Did work", stored: true},
		{name: "section edited since request", id: "a", base: "Old work", wantErr: ErrStaleProposal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newLoadedStore(t)
			err := store.SetProposalFor(types.RevisionProposal{SectionID: tt.id, Professional: "p", ATSOptimized: "q"}, tt.base)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.stored, store.HasProposal(tt.id))
		})
	}

	store := newLoadedStore(t)
	var notFound *NotFoundError
	assert.ErrorAs(t, store.SetProposalFor(types.RevisionProposal{SectionID: "zz"}, ""), &notFound)
}

func TestStore_Discard(t *testing.T) {
	store := newLoadedStore(t)
	require.NoError(t, store.SetProposal(types.RevisionProposal{SectionID: "b", Professional: "x", ATSOptimized: "y"}))

	require.NoError(t, store.Discard("b"))
	assert.False(t, store.HasProposal("b"))
	sec, _ := store.Section("b")
	assert.Equal(t, "BSc", sec.Content)

	var noProposal *NoProposalError
	assert.ErrorAs(t, store.Discard("b"), &noProposal)
}

func TestStore_UnknownIDs(t *testing.T) {
	store := newLoadedStore(t)
	var notFound *NotFoundError

	assert.ErrorAs(t, store.Edit("zz", "x"), &notFound)
	assert.ErrorAs(t, store.SetProposal(types.RevisionProposal{SectionID: "zz"}), &notFound)
	_, err := store.Section("zz")
	assert.ErrorAs(t, err, &notFound)
	_, err = store.ApplyProposal("zz", types.ChoiceProfessional)
	assert.ErrorAs(t, err, &notFound)
}

func TestStore_InvalidChoiceKeepsProposal(t *testing.T) {
	store := newLoadedStore(t)
	require.NoError(t, store.SetProposal(types.RevisionProposal{SectionID: "a", Professional: "p", ATSOptimized: "q"}))

	_, err := store.ApplyProposal("a", types.Choice("bogus"))
	require.Error(t, err)
	assert.True(t, store.HasProposal("a"))
}

func TestStore_ApplyResultClearsStaleProposals(t *testing.T) {
	store := newLoadedStore(t)
	require.NoError(t, store.SetProposal(types.RevisionProposal{SectionID: "a", Professional: "p", ATSOptimized: "q"}))
	require.NoError(t, store.SetProposal(types.RevisionProposal{SectionID: "b", Professional: "p", ATSOptimized: "q"}))

	store.ApplyResult([]types.Section{{ID: "a", Content: "bulk"}})

	assert.False(t, store.HasProposal("a"))
	assert.True(t, store.HasProposal("b"))
}

func TestStore_EditKeepsOriginal(t *testing.T) {
	store := newLoadedStore(t)
	require.NoError(t, store.Edit("a", "Hand edited"))

	sec, err := store.Section("a")
	require.NoError(t, err)
	assert.Equal(t, "Hand edited", sec.Content)
	assert.Equal(t, "Did work", sec.OriginalContent)
	assert.True(t, sec.Modified())
}

func TestStore_SectionsReturnsCopy(t *testing.T) {
	store := newLoadedStore(t)
	got := store.Sections()
	got[0].Content = "mutated"

	sec, _ := store.Section("a")
	assert.Equal(t, "Did work", sec.Content)
}

func TestStore_RestoreIsVerbatim(t *testing.T) {
	store := NewStore(nil)
	set := []types.Section{{ID: "a", Title: "Summary", Content: "edited"}}
	require.NoError(t, store.Restore(set))

	got := store.Sections()
	assert.Equal(t, set, got)

	store.Reset()
	assert.Equal(t, 0, store.Len())
}

func TestStore_ConcurrentProposalsForDifferentIDs(t *testing.T) {
	store := NewStore(nil)
	var set []types.Section
	for i := 0; i < 20; i++ {
		set = append(set, types.Section{ID: fmt.Sprintf("s%d", i), Content: "c"})
	}
	require.NoError(t, store.Load(set))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			_ = store.SetProposal(types.RevisionProposal{SectionID: id, Professional: id + "-p", ATSOptimized: id + "-a"})
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("s%d", i)
		p, err := store.Proposal(id)
		require.NoError(t, err)
		assert.Equal(t, id+"-p", p.Professional)
	}
}
