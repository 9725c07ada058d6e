package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/insight"
	"github.com/nhle/transcript-insights/internal/model"
)

func newInsightsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show and revise the insights of a transcript",
	}

	list := &cobra.Command{
		Use:   "list <file-id>",
		Short: "List insights with their task state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				items, err := fetchInsights(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				printInsights(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}

	refresh := &cobra.Command{
		Use:   "refresh <file-id>",
		Short: "Refetch insights, keeping task flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				items, err := d.insights.Refresh(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Insights refreshed\n")
				printInsights(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}

	update := &cobra.Command{
		Use:   "update <file-id> <n> <content>",
		Short: "Revise insight n using content as the suggestion",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				ctx := cmd.Context()
				items, err := fetchInsights(ctx, d, args[0])
				if err != nil {
					return err
				}
				it, err := pick(items, args[1])
				if err != nil {
					return err
				}
				if strings.TrimSpace(args[2]) == "" {
					return fmt.Errorf("content is required")
				}
				_, updated, err := d.insights.UpdateOne(ctx, args[0], items, it.ID, args[2])
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Insight updated successfully\n")
				printInsights(cmd.OutOrStdout(), []model.InsightWithTask{updated})
				return nil
			})
		},
	}

	suggest := &cobra.Command{
		Use:   "suggest <file-id> <changes>",
		Short: "Revise every insight using the suggested changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[1]) == "" {
				return fmt.Errorf("suggested changes are required")
			}
			return withDeps(opts, func(d *deps) error {
				items, err := d.insights.UpdateAll(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "All insights updated successfully\n")
				printInsights(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}

	cmd.AddCommand(list, refresh, update, suggest)
	return cmd
}

func newTasksCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Track insights as tasks",
	}

	toggle := func(use, short string, completed bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <file-id> <n>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeps(opts, func(d *deps) error {
					ctx := cmd.Context()
					items, err := fetchInsights(ctx, d, args[0])
					if err != nil {
						return err
					}
					it, err := pick(items, args[1])
					if err != nil {
						return err
					}

					out := cmd.OutOrStdout()
					if completed {
						if !it.IsTask {
							return fmt.Errorf("insight %s is not a task", args[1])
						}
						if _, err := d.insights.ToggleCompleted(ctx, args[0], items, it.ID); err != nil {
							return err
						}
						if it.Completed {
							printf(out, "Marked as pending\n")
						} else {
							printf(out, "Marked as completed\n")
						}
						return nil
					}

					if _, err := d.insights.ToggleTask(ctx, args[0], items, it.ID); err != nil {
						return err
					}
					if it.IsTask {
						printf(out, "Removed from tasks\n")
					} else {
						printf(out, "Added to tasks\n")
					}
					return nil
				})
			},
		}
	}

	list := &cobra.Command{
		Use:   "list <file-id>",
		Short: "List task-flagged insights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				items, err := fetchInsights(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}
				tasks := insight.Tasks(items)
				if len(tasks) == 0 {
					printf(cmd.OutOrStdout(), "No tasks yet.\n")
					return nil
				}
				printInsights(cmd.OutOrStdout(), tasks)
				return nil
			})
		},
	}

	var output string
	export := &cobra.Command{
		Use:   "export <file-id>",
		Short: "Export tasks as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				items, err := fetchInsights(cmd.Context(), d, args[0])
				if err != nil {
					return err
				}

				var buf bytes.Buffer
				if err := insight.ExportCSV(&buf, items); err != nil {
					return err
				}
				if output == "-" {
					_, err := cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				path := output
				if path == "" {
					path = filepath.Join(opts.exportDir, insight.ExportFilename(args[0]))
				}
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				printf(cmd.OutOrStdout(), "Tasks exported successfully to %s\n", path)
				return nil
			})
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "file to write, - for stdout (default tasks-<file-id>.csv)")

	cmd.AddCommand(
		toggle("toggle", "Add insight n to tasks, or remove it", false),
		toggle("complete", "Toggle completion of task n", true),
		list,
		export,
	)
	return cmd
}

// withDeps loads the dependencies, runs fn and releases them.
func withDeps(opts *options, fn func(*deps) error) error {
	d, err := loadDeps(opts)
	if err != nil {
		return err
	}
	defer d.close()
	return fn(d)
}

// fetchInsights fetches and merges insights, marking the transcript as
// failed when the service no longer has its text.
func fetchInsights(ctx context.Context, d *deps, fileID string) ([]model.InsightWithTask, error) {
	items, err := d.insights.Fetch(ctx, fileID)
	if err != nil && api.IsNotFound(err) {
		if _, ok := d.files.Get(ctx, fileID); ok {
			if serr := d.files.SetStatus(ctx, fileID, model.TranscriptError); serr != nil {
				return nil, fmt.Errorf("%w (marking transcript failed: %v)", err, serr)
			}
		}
	}
	return items, err
}

// pick returns the insight at 1-based position arg.
func pick(items []model.InsightWithTask, arg string) (model.InsightWithTask, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(items) {
		return model.InsightWithTask{}, fmt.Errorf("insight %q not found: expected 1 to %d", arg, len(items))
	}
	return items[n-1], nil
}

func printInsights(w io.Writer, items []model.InsightWithTask) {
	if len(items) == 0 {
		printf(w, "No insights.\n")
		return
	}
	for _, it := range items {
		n, _ := insightNumber(it.ID)
		mark := "   "
		switch {
		case it.IsTask && it.Completed:
			mark = "[x]"
		case it.IsTask:
			mark = "[ ]"
		}
		printf(w, "%2d. %s %s\n", n, mark, insight.CategoryLabel(it.Category))
		for _, line := range strings.Split(it.Content, "\n") {
			printf(w, "       %s\n", line)
		}
	}
}

// insightNumber is the 1-based position encoded in an insight id.
func insightNumber(id string) (int, error) {
	i := strings.LastIndex(id, "-")
	n, err := strconv.Atoi(id[i+1:])
	return n + 1, err
}
