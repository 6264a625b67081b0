package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chaindomain "momentum-backend/internal/chain/domain"
)

// fakeChainRepo is an in-memory store with the same all-or-nothing
// batch semantics and lexicographic deadline comparison as the real
// repository.
type fakeChainRepo struct {
	chains  map[string]map[string]interface{}            // chainID -> canonical doc
	entries map[string]map[string]map[string]interface{} // participant -> chainID -> doc

	fanOutErr error
	mergeErr  error
	removeErr error
	expireErr error

	fanOutCalls int
	mergeCalls  int
	removeCalls int
}

func newFakeChainRepo() *fakeChainRepo {
	return &fakeChainRepo{
		chains:  map[string]map[string]interface{}{},
		entries: map[string]map[string]map[string]interface{}{},
	}
}

func (f *fakeChainRepo) entry(participantID, chainID string) (map[string]interface{}, bool) {
	docs, ok := f.entries[participantID]
	if !ok {
		return nil, false
	}
	doc, ok := docs[chainID]
	return doc, ok
}

func (f *fakeChainRepo) setEntry(participantID, chainID string, doc map[string]interface{}) {
	if f.entries[participantID] == nil {
		f.entries[participantID] = map[string]map[string]interface{}{}
	}
	f.entries[participantID][chainID] = doc
}

func (f *fakeChainRepo) FanOut(_ context.Context, chain chaindomain.Chain) error {
	f.fanOutCalls++
	if f.fanOutErr != nil {
		return f.fanOutErr // batch failed, nothing written
	}
	for _, p := range chain.Participants {
		f.setEntry(p, chain.ID, chain.Map())
	}
	return nil
}

func (f *fakeChainRepo) MergeFanOut(_ context.Context, chain chaindomain.Chain) error {
	f.mergeCalls++
	if f.mergeErr != nil {
		return f.mergeErr
	}
	for _, p := range chain.Participants {
		existing, ok := f.entry(p, chain.ID)
		if !ok {
			existing = map[string]interface{}{}
		}
		merged := map[string]interface{}{}
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range chain.Map() {
			merged[k] = v
		}
		f.setEntry(p, chain.ID, merged)
	}
	return nil
}

func (f *fakeChainRepo) RemoveFanOut(_ context.Context, chainID string, participants []string) error {
	f.removeCalls++
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, p := range participants {
		delete(f.entries[p], chainID) // missing doc is fine
	}
	return nil
}

func (f *fakeChainRepo) DeleteExpired(_ context.Context, cutoff string) (int, error) {
	if f.expireErr != nil {
		return 0, f.expireErr
	}
	count := 0
	for chainID, doc := range f.chains {
		deadline, _ := doc["deadline"].(string)
		if deadline >= cutoff { // strict less-than expires
			continue
		}
		delete(f.chains, chainID)
		chain := chaindomain.DecodeChain(chainID, doc)
		for _, p := range chain.Participants {
			delete(f.entries[p], chainID)
		}
		count++
	}
	return count, nil
}

type fakeNotifier struct {
	notified []chaindomain.Chain
}

func (f *fakeNotifier) NotifyChainCreated(_ context.Context, chain chaindomain.Chain) {
	f.notified = append(f.notified, chain)
}

func chainPayload() map[string]interface{} {
	return map[string]interface{}{
		"theme":        "Morning Run",
		"createdBy":    "u1",
		"participants": []interface{}{"u1", "u2", "u3"},
		"deadline":     "2099-01-01T00:00:00Z",
	}
}

func TestHandleChainCreated_FansOutToAllParticipants(t *testing.T) {
	repo := newFakeChainRepo()
	notifier := &fakeNotifier{}
	uc := NewChainFanoutUsecase(repo, notifier)

	err := uc.HandleChainCreated(context.Background(), "c1", chainPayload())
	require.NoError(t, err)

	want := chaindomain.DecodeChain("c1", chainPayload()).Map()
	for _, p := range []string{"u1", "u2", "u3"} {
		doc, ok := repo.entry(p, "c1")
		require.True(t, ok, "missing entry for %s", p)
		assert.Equal(t, want, doc)
	}

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "c1", notifier.notified[0].ID)
}

func TestHandleChainCreated_BatchFailureMeansNoEntriesAndNoNotify(t *testing.T) {
	repo := newFakeChainRepo()
	repo.fanOutErr = errors.New("commit failed")
	notifier := &fakeNotifier{}
	uc := NewChainFanoutUsecase(repo, notifier)

	err := uc.HandleChainCreated(context.Background(), "c1", chainPayload())
	require.Error(t, err)

	assert.Empty(t, repo.entries)
	assert.Empty(t, notifier.notified, "notifications must wait for the batch commit")
}

func TestHandleChainCreated_ValidationGate(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{"empty participants", map[string]interface{}{
			"createdBy":    "u1",
			"participants": []interface{}{},
		}},
		{"missing createdBy", map[string]interface{}{
			"participants": []interface{}{"u1", "u2"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeChainRepo()
			notifier := &fakeNotifier{}
			uc := NewChainFanoutUsecase(repo, notifier)

			err := uc.HandleChainCreated(context.Background(), "c1", tt.data)
			require.NoError(t, err, "malformed input is discarded, not an error")

			assert.Zero(t, repo.fanOutCalls)
			assert.Empty(t, repo.entries)
			assert.Empty(t, notifier.notified)
		})
	}
}

func TestHandleChainCreated_NilNotifier(t *testing.T) {
	repo := newFakeChainRepo()
	uc := NewChainFanoutUsecase(repo, nil)

	err := uc.HandleChainCreated(context.Background(), "c1", chainPayload())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.fanOutCalls)
}

func TestHandleChainUpdated_MergePreservesForeignFields(t *testing.T) {
	repo := newFakeChainRepo()
	uc := NewChainFanoutUsecase(repo, &fakeNotifier{})

	require.NoError(t, uc.HandleChainCreated(context.Background(), "c1", chainPayload()))

	// a field the fan-out payload never carries must survive the merge
	doc, _ := repo.entry("u2", "c1")
	doc["pinned"] = true

	updated := chainPayload()
	updated["theme"] = "Evening Run"
	require.NoError(t, uc.HandleChainUpdated(context.Background(), "c1", updated))

	doc, ok := repo.entry("u2", "c1")
	require.True(t, ok)
	assert.Equal(t, "Evening Run", doc["theme"])
	assert.Equal(t, true, doc["pinned"])
}

func TestHandleChainUpdated_DoesNotNotify(t *testing.T) {
	repo := newFakeChainRepo()
	notifier := &fakeNotifier{}
	uc := NewChainFanoutUsecase(repo, notifier)

	require.NoError(t, uc.HandleChainUpdated(context.Background(), "c1", chainPayload()))
	assert.Empty(t, notifier.notified)
}

func TestHandleChainUpdated_KeepsStaleEntriesForDroppedParticipants(t *testing.T) {
	repo := newFakeChainRepo()
	uc := NewChainFanoutUsecase(repo, &fakeNotifier{})

	require.NoError(t, uc.HandleChainCreated(context.Background(), "c1", chainPayload()))

	updated := chainPayload()
	updated["participants"] = []interface{}{"u1", "u2"} // u3 dropped
	require.NoError(t, uc.HandleChainUpdated(context.Background(), "c1", updated))

	_, ok := repo.entry("u3", "c1")
	assert.True(t, ok, "dropped participants keep their stale entry")
}

func TestHandleChainDeleted_RemovesAllEntries(t *testing.T) {
	repo := newFakeChainRepo()
	uc := NewChainFanoutUsecase(repo, &fakeNotifier{})

	require.NoError(t, uc.HandleChainCreated(context.Background(), "c1", chainPayload()))
	require.NoError(t, uc.HandleChainDeleted(context.Background(), "c1", chainPayload()))

	for _, p := range []string{"u1", "u2", "u3"} {
		_, ok := repo.entry(p, "c1")
		assert.False(t, ok, "entry for %s should be gone", p)
	}
}

func TestHandleChainDeleted_Idempotent(t *testing.T) {
	repo := newFakeChainRepo()
	uc := NewChainFanoutUsecase(repo, &fakeNotifier{})

	require.NoError(t, uc.HandleChainCreated(context.Background(), "c1", chainPayload()))
	require.NoError(t, uc.HandleChainDeleted(context.Background(), "c1", chainPayload()))
	require.NoError(t, uc.HandleChainDeleted(context.Background(), "c1", chainPayload()))

	assert.Equal(t, 2, repo.removeCalls)
}

func TestHandleChainDeleted_NoParticipantsIsNoop(t *testing.T) {
	repo := newFakeChainRepo()
	uc := NewChainFanoutUsecase(repo, &fakeNotifier{})

	err := uc.HandleChainDeleted(context.Background(), "c1", map[string]interface{}{})
	require.NoError(t, err)
	assert.Zero(t, repo.removeCalls)
}

func TestSweepExpiredChains_StrictBoundary(t *testing.T) {
	repo := newFakeChainRepo()
	uc := NewChainFanoutUsecase(repo, &fakeNotifier{})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cutoff := now.Format(time.RFC3339)

	seed := func(chainID, deadline string, participants ...string) {
		raw := make([]interface{}, 0, len(participants))
		for _, p := range participants {
			raw = append(raw, p)
		}
		doc := map[string]interface{}{
			"createdBy":    "u1",
			"participants": raw,
			"deadline":     deadline,
		}
		repo.chains[chainID] = doc
		chain := chaindomain.DecodeChain(chainID, doc)
		for _, p := range chain.Participants {
			repo.setEntry(p, chainID, chain.Map())
		}
	}

	seed("c2", "2025-06-01T11:59:59Z", "u1", "u2") // one second past
	seed("c3", "2099-01-01T00:00:00Z", "u1")       // future
	seed("c4", cutoff, "u2")                       // exactly now

	deleted, err := uc.SweepExpiredChains(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, hasC2 := repo.chains["c2"]
	assert.False(t, hasC2)
	_, ok := repo.entry("u1", "c2")
	assert.False(t, ok)
	_, ok = repo.entry("u2", "c2")
	assert.False(t, ok)

	_, hasC3 := repo.chains["c3"]
	assert.True(t, hasC3, "future deadline is untouched")
	_, hasC4 := repo.chains["c4"]
	assert.True(t, hasC4, "deadline equal to now is not expired")
}

func TestSweepExpiredChains_EmptyAndFailure(t *testing.T) {
	repo := newFakeChainRepo()
	uc := NewChainFanoutUsecase(repo, &fakeNotifier{})

	deleted, err := uc.SweepExpiredChains(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, deleted)

	repo.expireErr = errors.New("query failed")
	_, err = uc.SweepExpiredChains(context.Background(), time.Now())
	assert.Error(t, err)
}
