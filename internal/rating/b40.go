// Package rating aggregates per-session ratings into a Best-N profile rating.
package rating

import (
	"sort"
	"time"

	"github.com/verte-zerg/rotaenot/internal/model"
)

// BestCount is the number of songs counted by the B40 rating.
const BestCount = 40

// Aggregator collects score records across sessions. It is not safe for
// concurrent use.
type Aggregator struct {
	records []model.ScoreRecord
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddRecord appends a record. Duplicates are kept.
func (a *Aggregator) AddRecord(songID string, difficulty int, rating float64, at time.Time) {
	a.records = append(a.records, model.ScoreRecord{
		SongID:     songID,
		Difficulty: difficulty,
		Rating:     rating,
		Timestamp:  at,
	})
}

// Add appends an existing record.
func (a *Aggregator) Add(rec model.ScoreRecord) {
	a.records = append(a.records, rec)
}

// Records returns a copy of all records in insertion order.
func (a *Aggregator) Records() []model.ScoreRecord {
	out := make([]model.ScoreRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Best40 returns the B40 total and the records it is made of.
func (a *Aggregator) Best40() (float64, []model.ScoreRecord) {
	return a.Best(BestCount)
}

// Best keeps the highest-rated record per song, ranks those by rating
// descending, and sums the top n. Ties keep first-inserted order.
func (a *Aggregator) Best(n int) (float64, []model.ScoreRecord) {
	if n <= 0 || len(a.records) == 0 {
		return 0, nil
	}
	bestIdx := make(map[string]int, len(a.records))
	var best []model.ScoreRecord
	for _, rec := range a.records {
		idx, ok := bestIdx[rec.SongID]
		if !ok {
			bestIdx[rec.SongID] = len(best)
			best = append(best, rec)
			continue
		}
		if rec.Rating > best[idx].Rating {
			best[idx] = rec
		}
	}
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Rating > best[j].Rating
	})
	if n > len(best) {
		n = len(best)
	}
	best = best[:n]

	var total float64
	for _, rec := range best {
		total += rec.Rating
	}
	return total, best
}
