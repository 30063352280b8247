package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/rotaenot/internal/model"
	"github.com/verte-zerg/rotaenot/internal/rating"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "rotaenot.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

func TestInsertAndListRecords(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	recs := []model.ScoreRecord{
		{SongID: "a", Difficulty: 8, Rating: 9.5, Timestamp: base},
		{SongID: "b", Difficulty: 12, Rating: 12, Timestamp: base.Add(time.Minute)},
		{SongID: "a", Difficulty: 8, Rating: 10.5, Timestamp: base.Add(2 * time.Minute)},
	}
	for _, rec := range recs {
		_, err := st.InsertRecord(ctx, uuid.New(), rec)
		require.NoError(t, err)
	}

	got, err := st.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range recs {
		assert.Equal(t, recs[i].SongID, got[i].SongID)
		assert.InDelta(t, recs[i].Rating, got[i].Rating, 1e-9)
		assert.True(t, recs[i].Timestamp.Equal(got[i].Timestamp))
	}

	total, best := rating.FromRecords(got).Best40()
	assert.InDelta(t, 22.5, total, 1e-9)
	require.Len(t, best, 2)
	assert.Equal(t, "b", best[0].SongID)
}

func TestListRecordsFilters(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	_, err := st.InsertRecord(ctx, uuid.New(), model.ScoreRecord{SongID: "a", Rating: 1, Timestamp: base})
	require.NoError(t, err)
	_, err = st.InsertRecord(ctx, uuid.New(), model.ScoreRecord{SongID: "b", Rating: 2, Timestamp: base.Add(time.Hour)})
	require.NoError(t, err)

	bySong, err := st.ListRecords(ctx, RecordFilter{SongID: "b"})
	require.NoError(t, err)
	require.Len(t, bySong, 1)
	assert.Equal(t, "b", bySong[0].SongID)

	since := base.Add(time.Minute)
	recent, err := st.ListRecords(ctx, RecordFilter{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "b", recent[0].SongID)
}

func TestInsertRecordRejectsDuplicateSession(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := st.InsertRecord(ctx, id, model.ScoreRecord{SongID: "a", Timestamp: time.Now()})
	require.NoError(t, err)
	_, err = st.InsertRecord(ctx, id, model.ScoreRecord{SongID: "a", Timestamp: time.Now()})
	assert.Error(t, err)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rotaenot.db")
	ctx := context.Background()

	st, err := Open(path)
	require.NoError(t, err)
	_, err = st.InsertRecord(ctx, uuid.New(), model.ScoreRecord{SongID: "a", Rating: 3, Timestamp: time.Now()})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	}()
	got, err := st.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
