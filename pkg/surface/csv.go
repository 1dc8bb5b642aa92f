package surface

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVRenderer writes a Record as two CSV sections: a Field,Value summary and,
// after a blank row, a Factor,Points breakdown.
type CSVRenderer struct{}

func (r *CSVRenderer) Render(w io.Writer, rec *Record) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Field", "Value"},
		{"Score", rec.ScoreName},
		{"Total Score", strconv.Itoa(rec.TotalScore)},
		{"Risk", rec.Risk},
		{"Recommendation", rec.Recommendation},
	}
	if rec.Details != "" {
		rows = append(rows, []string{"Details", rec.Details})
	}
	rows = append(rows,
		[]string{"Timestamp", rec.Timestamp},
		[]string{"", ""},
		[]string{"Factor", "Points"},
	)
	for _, fe := range rec.FieldBreakdown {
		rows = append(rows, []string{fe.Label, strconv.Itoa(fe.Points)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
