// Package profile computes column statistics and quality scores over a
// row sample.
package profile

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/aiverse/datafabric/pkg/domain"
	"github.com/aiverse/datafabric/pkg/engine/record"
)

var patterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"email", regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)},
	{"uuid", regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)},
	{"timestamp", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)},
	{"url", regexp.MustCompile(`^https?://`)},
}

// Below this many rows the statistics do not generalize; the profile
// is reported with a low confidence mark.
const lowConfidenceRows = 30

// Run profiles at most sampleSize rows (zero or negative means all).
// lowConfidence reports whether the profiled sample was too small.
func Run(rows []record.Row, sampleSize int) ([]domain.ColumnStatistics, map[string]float64, []string, bool) {
	if sampleSize > 0 && sampleSize < len(rows) {
		rows = rows[:sampleSize]
	}
	lowConfidence := len(rows) < lowConfidenceRows

	columns := record.Columns(rows)
	stats := make([]domain.ColumnStatistics, 0, len(columns))
	detected := []string{}

	totalCells := 0
	totalNulls := 0
	uniquenessSum := 0.0

	for _, column := range columns {
		cs := domain.ColumnStatistics{ColumnName: column}
		distinct := map[string]struct{}{}
		numericSum, numericCount := 0.0, 0
		var minNum, maxNum *float64
		patternHits := map[string]int{}
		stringCount := 0

		for _, row := range rows {
			value, ok := row[column]
			if !ok || value == nil {
				cs.NullCount++
				continue
			}
			distinct[fmt.Sprintf("%v", value)] = struct{}{}

			if n, isNum := record.Number(value); isNum {
				numericSum += n
				numericCount++
				if minNum == nil || n < *minNum {
					v := n
					minNum = &v
				}
				if maxNum == nil || n > *maxNum {
					v := n
					maxNum = &v
				}
			}
			if s, isStr := value.(string); isStr {
				stringCount++
				for _, p := range patterns {
					if p.re.MatchString(s) {
						patternHits[p.name]++
					}
				}
			}
		}

		cs.DistinctCount = len(distinct)
		if numericCount > 0 {
			mean := numericSum / float64(numericCount)
			cs.MeanValue = &mean
			cs.MinValue = *minNum
			cs.MaxValue = *maxNum
		}

		for _, p := range patterns {
			// a pattern counts when it covers the whole string sample
			if stringCount > 0 && patternHits[p.name] == stringCount {
				detected = append(detected, fmt.Sprintf("%s:%s", column, p.name))
			}
		}

		totalCells += len(rows)
		totalNulls += cs.NullCount
		nonNull := len(rows) - cs.NullCount
		if nonNull > 0 {
			uniquenessSum += float64(cs.DistinctCount) / float64(nonNull)
		}

		stats = append(stats, cs)
	}

	scores := map[string]float64{}
	if totalCells > 0 {
		scores["completeness"] = 1 - float64(totalNulls)/float64(totalCells)
	}
	if len(columns) > 0 {
		scores["uniqueness"] = uniquenessSum / float64(len(columns))
	}

	sort.Strings(detected)
	return stats, scores, detected, lowConfidence
}
