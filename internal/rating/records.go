package rating

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/verte-zerg/rotaenot/internal/model"
)

// LoadRecords reads an exported JSON array of score records.
func LoadRecords(path string) ([]model.ScoreRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	var recs []model.ScoreRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return recs, nil
}

// FromRecords builds an aggregator over recs in order.
func FromRecords(recs []model.ScoreRecord) *Aggregator {
	a := NewAggregator()
	for _, rec := range recs {
		a.Add(rec)
	}
	return a
}
