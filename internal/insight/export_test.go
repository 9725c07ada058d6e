package insight

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nhle/transcript-insights/internal/model"
)

func TestExportCSV(t *testing.T) {
	items := []model.InsightWithTask{
		{
			Insight:    model.Insight{ID: "a", Category: model.CategoryAction, Content: "Send the \"final\" deck\nby Friday"},
			Annotation: model.Annotation{IsTask: true, Completed: true},
		},
		{
			Insight: model.Insight{ID: "b", Category: model.CategorySentiment, Content: "not a task"},
		},
		{
			Insight:    model.Insight{ID: "c", Category: model.CategoryQuestion, Content: "Pricing?"},
			Annotation: model.Annotation{IsTask: true},
		},
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, items); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	want := "Task,Status,Category,Content\n" +
		"1,Completed,Action,\"Send the \"\"final\"\" deck by Friday\"\n" +
		"2,Pending,Question,\"Pricing?\"\n"
	if buf.String() != want {
		t.Errorf("ExportCSV =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestExportCSVNoTasks(t *testing.T) {
	items := []model.InsightWithTask{{Insight: model.Insight{ID: "a"}}}

	var buf bytes.Buffer
	err := ExportCSV(&buf, items)
	if !errors.Is(err, ErrNoTasks) {
		t.Fatalf("ExportCSV error = %v, want ErrNoTasks", err)
	}
	if buf.Len() != 0 {
		t.Errorf("ExportCSV wrote %q with no tasks", buf.String())
	}
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename("call"); got != "tasks-call.csv" {
		t.Errorf("ExportFilename = %q", got)
	}
}
