package cli

import (
	"github.com/spf13/cobra"
)

func newUploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a .txt or .pdf transcript (max 5MB)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps(opts)
			if err != nil {
				return err
			}
			defer d.close()

			f, err := d.files.Upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "File uploaded successfully: %s (id %s)\n", f.Filename, f.ID)
			return nil
		},
	}
}

func newFilesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List uploaded transcripts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDeps(opts)
			if err != nil {
				return err
			}
			defer d.close()

			files := d.files.List(cmd.Context())
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				printf(out, "No transcripts uploaded yet.\n")
				return nil
			}
			for _, f := range files {
				printf(out, "%-24s %-10s %s  %s\n",
					f.ID, f.Status, f.UploadedAt.Local().Format("2006-01-02 15:04"), f.Filename)
			}
			return nil
		},
	}
}
