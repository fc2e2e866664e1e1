package metrics

import (
	"fmt"
	"strings"
)

// Report formats usage and health as plain text for operators.
func Report(usage []DailyUsage, health SysHealth) string {
	var b strings.Builder

	b.WriteString("Usage\n")
	if len(usage) == 0 {
		b.WriteString("  no executions recorded\n")
	}
	for _, u := range usage {
		fmt.Fprintf(&b, "  %s: %d plans (%d rejected, %d failed), %d+%d tokens, avg %dms\n",
			u.Date, u.Executions, u.Rejected, u.Failed, u.TotalPrompt, u.TotalCompletion, u.AvgLatencyMS)
	}

	fmt.Fprintf(&b, "System\n  heap %d MB, sys %d MB, gc %d, goroutines %d, db %s\n",
		health.AllocMB, health.SysMB, health.NumGC, health.Goroutines, health.DBSize)
	return b.String()
}
