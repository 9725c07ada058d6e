// Package cli implements the transcripts command line. Without a
// subcommand it launches the terminal UI.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/transcript-insights/internal/credential"
	"github.com/nhle/transcript-insights/internal/model"
)

// options are the global flags and injectable collaborators shared by
// every command.
type options struct {
	configPath string
	ephemeral  bool
	exportDir  string

	// openVault opens the credential store. Tests replace it with an
	// in-memory keyring.
	openVault func() (*credential.Vault, error)
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(version, &options{openVault: credential.Open})
}

func newRootCmd(version string, opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "transcripts",
		Short: "Transcript insights in your terminal",
		Long: `transcripts uploads conversation transcripts to the insights service,
shows the extracted action items, sentiment and questions, and drafts a
follow-up email you can edit, version and send.

Run without a subcommand to open the terminal UI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to the config file")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep state in memory instead of on disk")
	flags.StringVar(&opts.exportDir, "export-dir", ".", "directory for CSV and .eml exports")

	root.AddCommand(
		newUploadCmd(opts),
		newFilesCmd(opts),
		newInsightsCmd(opts),
		newTasksCmd(opts),
		newEmailCmd(opts),
		newAuthCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
