package history

import "time"

// TrendPoint is one recorded run enriched with deltas against the run
// before it and a rolling unresolved average.
type TrendPoint struct {
	Timestamp         time.Time `json:"timestamp"`
	RunID             string    `json:"run_id"`
	FilesScanned      int       `json:"files_scanned"`
	CommentsSeen      int       `json:"comments_seen"`
	ImportsRewritten  int       `json:"imports_rewritten"`
	ImportsUnresolved int       `json:"imports_unresolved"`
	ModulesIndexed    int       `json:"modules_indexed"`
	TypedefsIndexed   int       `json:"typedefs_indexed"`
	DeltaFiles        int       `json:"delta_files"`
	DeltaRewritten    int       `json:"delta_rewritten"`
	DeltaUnresolved   int       `json:"delta_unresolved"`
	DeltaModules      int       `json:"delta_modules"`
	DeltaTypedefs     int       `json:"delta_typedefs"`
	AvgUnresolved     float64   `json:"avg_unresolved"`
	HoursSinceFirst   float64   `json:"hours_since_first"`
}

// TrendReport summarizes unresolved-import and index-size movement over a
// sequence of runs.
type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	Points        []TrendPoint `json:"points"`
}

// BuildTrendReport turns recorded runs, oldest first, into a trend report.
func BuildTrendReport(runs []RunSnapshot) TrendReport {
	report := TrendReport{
		SchemaVersion: SchemaVersion,
		RunCount:      len(runs),
		Points:        make([]TrendPoint, 0, len(runs)),
	}
	if len(runs) == 0 {
		return report
	}

	report.Since = runs[0].Timestamp
	report.Until = runs[len(runs)-1].Timestamp
	report.Window = report.Until.Sub(report.Since).String()

	unresolvedSum := 0
	for i, run := range runs {
		point := TrendPoint{
			Timestamp:         run.Timestamp,
			RunID:             run.RunID,
			FilesScanned:      run.FilesScanned,
			CommentsSeen:      run.CommentsSeen,
			ImportsRewritten:  run.ImportsRewritten,
			ImportsUnresolved: run.ImportsUnresolved,
			ModulesIndexed:    run.ModulesIndexed,
			TypedefsIndexed:   run.TypedefsIndexed,
			HoursSinceFirst:   run.Timestamp.Sub(report.Since).Hours(),
		}
		if i > 0 {
			prev := runs[i-1]
			point.DeltaFiles = run.FilesScanned - prev.FilesScanned
			point.DeltaRewritten = run.ImportsRewritten - prev.ImportsRewritten
			point.DeltaUnresolved = run.ImportsUnresolved - prev.ImportsUnresolved
			point.DeltaModules = run.ModulesIndexed - prev.ModulesIndexed
			point.DeltaTypedefs = run.TypedefsIndexed - prev.TypedefsIndexed
		}
		unresolvedSum += run.ImportsUnresolved
		point.AvgUnresolved = float64(unresolvedSum) / float64(i+1)

		report.Points = append(report.Points, point)
	}

	return report
}
