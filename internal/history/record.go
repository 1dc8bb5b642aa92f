package history

import (
	"errors"
	"time"

	"github.com/jeffcwolf/klinscore/pkg/scoring"
)

// ErrNotFound is returned when a record is not in the index or its blob is missing.
var ErrNotFound = errors.New("calculation record not found")

// Record is one stored calculation: the inputs as entered and the result.
type Record struct {
	ID           string                     `json:"id"`
	ScoreID      string                     `json:"score_id"`
	ScoreName    string                     `json:"score_name"`
	ScoreVersion string                     `json:"score_version,omitempty"`
	Inputs       scoring.Inputs             `json:"inputs"`
	Result       *scoring.CalculationResult `json:"result"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// Summary is the indexed view of a Record.
type Summary struct {
	ID           string            `json:"id"`
	ScoreID      string            `json:"score_id"`
	ScoreName    string            `json:"score_name"`
	ScoreVersion string            `json:"score_version,omitempty"`
	Total        int               `json:"total"`
	RiskLevel    scoring.RiskLevel `json:"risk_level"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Summary returns the index row for r.
func (r *Record) Summary() Summary {
	s := Summary{
		ID:           r.ID,
		ScoreID:      r.ScoreID,
		ScoreName:    r.ScoreName,
		ScoreVersion: r.ScoreVersion,
		CreatedAt:    r.CreatedAt,
	}
	if r.Result != nil {
		s.Total = r.Result.Total
		s.RiskLevel = r.Result.RiskLevel
	}
	return s
}
