package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/transcript-insights/internal/email"
	"github.com/nhle/transcript-insights/internal/model"
)

// addressFlags are the envelope flags shared by send, export and
// save-draft.
type addressFlags struct {
	to      string
	from    string
	version int
}

func (f *addressFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.to, "to", "", "recipient address")
	cmd.Flags().StringVar(&f.from, "from", "", "sender address")
	cmd.Flags().IntVar(&f.version, "version", 0, "use version n instead of the latest draft")
}

func newEmailCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Edit, version and send the follow-up email",
	}

	show := &cobra.Command{
		Use:   "show <file-id>",
		Short: "Fetch and print the current draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				state, err := d.email.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printDraft(cmd.OutOrStdout(), state.Draft)
				return nil
			})
		},
	}

	regenerate := &cobra.Command{
		Use:   "regenerate <file-id> <feedback>",
		Short: "Rewrite the draft using feedback",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				state, err := d.email.Regenerate(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Email draft updated successfully\n")
				reportAppend(cmd.OutOrStdout(), state)
				printDraft(cmd.OutOrStdout(), state.Draft)
				return nil
			})
		},
	}

	refresh := &cobra.Command{
		Use:   "refresh <file-id>",
		Short: "Fetch the draft again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				state, err := d.email.Refresh(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Email draft refreshed\n")
				reportAppend(cmd.OutOrStdout(), state)
				return nil
			})
		},
	}

	versions := &cobra.Command{
		Use:   "versions <file-id>",
		Short: "List stored draft versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				out := cmd.OutOrStdout()
				history := d.email.Versions(cmd.Context(), args[0])
				if len(history) == 0 {
					printf(out, "No versions yet.\n")
					return nil
				}
				for _, v := range history {
					printf(out, "%-4s %s  %s\n",
						email.VersionTab(v.Version), v.CreatedAt.Local().Format("2006-01-02 15:04"), v.Subject)
				}
				return nil
			})
		},
	}

	var sendFlags addressFlags
	send := &cobra.Command{
		Use:   "send <file-id>",
		Short: "Send the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				ctx := cmd.Context()
				draft, err := selectDraft(ctx, d, args[0], sendFlags.version)
				if err != nil {
					return err
				}
				req := email.SendRequest{
					To:      sendFlags.to,
					From:    sendFlags.from,
					Subject: draft.Subject,
					Content: draft.Content,
				}
				if err := d.email.Send(ctx, req); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Email sent successfully\n")
				return nil
			})
		},
	}
	sendFlags.register(send)

	var exportFlags addressFlags
	var output string
	export := &cobra.Command{
		Use:   "export <file-id>",
		Short: "Write the draft as an .eml message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				draft, err := selectDraft(cmd.Context(), d, args[0], exportFlags.version)
				if err != nil {
					return err
				}
				msg := message(draft, exportFlags)
				if output == "-" {
					return email.Render(cmd.OutOrStdout(), msg)
				}
				path := output
				if path == "" {
					path = filepath.Join(opts.exportDir, email.ExportFilename(args[0]))
				}
				raw, err := email.RenderBytes(msg)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, raw, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				printf(cmd.OutOrStdout(), "Email draft saved to %s\n", path)
				return nil
			})
		},
	}
	exportFlags.register(export)
	export.Flags().StringVarP(&output, "output", "o", "", "file to write, - for stdout (default email-<file-id>.eml)")

	var draftFlags addressFlags
	saveDraft := &cobra.Command{
		Use:   "save-draft <file-id>",
		Short: "Store the draft in the configured IMAP drafts mailbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(d *deps) error {
				ctx := cmd.Context()
				drafts, err := d.drafts(opts)
				if err != nil {
					return err
				}
				draft, err := selectDraft(ctx, d, args[0], draftFlags.version)
				if err != nil {
					return err
				}
				if err := drafts.Save(ctx, message(draft, draftFlags)); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Email draft saved to %s\n", drafts.Mailbox())
				return nil
			})
		},
	}
	draftFlags.register(saveDraft)

	cmd.AddCommand(show, regenerate, refresh, versions, send, export, saveDraft)
	return cmd
}

// selectDraft returns version n of the history, or the stored draft when
// n is zero. Without a stored draft it is fetched first.
func selectDraft(ctx context.Context, d *deps, fileID string, n int) (model.EmailDraft, error) {
	if n > 0 {
		for _, v := range d.email.Versions(ctx, fileID) {
			if v.Version == n {
				return v, nil
			}
		}
		return model.EmailDraft{}, fmt.Errorf("version %d of %s not found", n, fileID)
	}
	if draft, ok := d.email.Current(ctx, fileID); ok {
		return draft, nil
	}
	state, err := d.email.Load(ctx, fileID)
	if err != nil {
		return model.EmailDraft{}, err
	}
	return state.Draft, nil
}

func message(draft model.EmailDraft, f addressFlags) email.Message {
	return email.Message{
		From:    strings.TrimSpace(f.from),
		To:      strings.TrimSpace(f.to),
		Subject: draft.Subject,
		Content: draft.Content,
		Date:    time.Now(),
	}
}

func reportAppend(w io.Writer, state email.State) {
	if state.Appended {
		printf(w, "Saved as %s\n", email.VersionTab(state.Draft.Version))
		return
	}
	printf(w, "No changes since %s\n", email.VersionTab(state.Draft.Version))
}

func printDraft(w io.Writer, d model.EmailDraft) {
	printf(w, "Subject: %s\nVersion: %s\n\n%s\n", d.Subject, strconv.Itoa(d.Version), d.Content)
}
