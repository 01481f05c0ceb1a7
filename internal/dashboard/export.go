package dashboard

import (
	"strconv"
	"strings"

	"github.com/mind-engage/instructor-dashboard/internal/course"
)

const (
	ExportFileName    = "results-scores.csv"
	ExportContentType = "text/csv"

	csvHeader = "TumId,ExerciseType,TotalExerciseScore"
)

type ExportRow struct {
	Login      string
	ExType     course.ExerciseType
	TotalScore float64
}

// ExportRows flattens the requested buckets in the given order. With no
// types it exports the programming-exercise bucket.
func ExportRows(b Breakdown, types ...course.ExerciseType) []ExportRow {
	if len(types) == 0 {
		types = []course.ExerciseType{course.TypeProgramming}
	}
	var out []ExportRow
	for _, t := range types {
		for _, s := range b.Bucket(t) {
			out = append(out, ExportRow{Login: s.Login, ExType: s.ExType, TotalScore: s.TotalScore})
		}
	}
	return out
}

// FormatAsCSV renders rows under the TumId header, fields separated by ", ".
// Values are written as-is: a login or type containing a comma breaks the
// column layout. An empty input yields "".
func FormatAsCSV(rows []ExportRow) string {
	if len(rows) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(csvHeader)
	for _, r := range rows {
		sb.WriteByte('\n')
		sb.WriteString(r.Login)
		sb.WriteString(", ")
		sb.WriteString(string(r.ExType))
		sb.WriteString(", ")
		sb.WriteString(strconv.FormatFloat(r.TotalScore, 'f', -1, 64))
	}
	return sb.String()
}
