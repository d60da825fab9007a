// Package report renders run-history trend reports for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"typeref/internal/data/history"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRun\tFiles\tComments\tRewritten\tUnresolved\tModules\tTypedefs\tDeltaFiles\tDeltaRewritten\tDeltaUnresolved\tDeltaModules\tDeltaTypedefs\tAvgUnresolved\tHoursSinceFirst\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.RunID,
			point.FilesScanned,
			point.CommentsSeen,
			point.ImportsRewritten,
			point.ImportsUnresolved,
			point.ModulesIndexed,
			point.TypedefsIndexed,
			point.DeltaFiles,
			point.DeltaRewritten,
			point.DeltaUnresolved,
			point.DeltaModules,
			point.DeltaTypedefs,
			point.AvgUnresolved,
			point.HoursSinceFirst,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
