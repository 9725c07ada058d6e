package insight

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nhle/transcript-insights/internal/model"
)

// ErrNoTasks is returned when an export is requested with no task-flagged
// insights.
var ErrNoTasks = errors.New("no tasks to export")

// csvHeader is the first line of every task export.
const csvHeader = "Task,Status,Category,Content\n"

// ExportFilename returns the conventional file name of a task export.
func ExportFilename(fileID string) string {
	return "tasks-" + fileID + ".csv"
}

// ExportCSV writes the task-flagged items as CSV. Content is always
// quoted, with embedded quotes doubled and newlines flattened to spaces.
// Nothing is written when there are no tasks.
func ExportCSV(w io.Writer, items []model.InsightWithTask) error {
	tasks := Tasks(items)
	if len(tasks) == 0 {
		return ErrNoTasks
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	for i, t := range tasks {
		status := "Pending"
		if t.Completed {
			status = "Completed"
		}
		content := strings.ReplaceAll(t.Content, `"`, `""`)
		content = strings.ReplaceAll(content, "\n", " ")
		fmt.Fprintf(&b, "%d,%s,%s,\"%s\"\n", i+1, status, CategoryLabel(t.Category), content)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing task export: %w", err)
	}
	return nil
}
