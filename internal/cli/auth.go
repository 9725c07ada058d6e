package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/transcript-insights/internal/credential"
)

func newAuthCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials",
	}
	cmd.AddCommand(
		secretCmd(opts, "token", "bearer token for the transcript service", credential.APITokenKey),
		secretCmd(opts, "imap-password", "password of the drafts mailbox", credential.IMAPPasswordKey),
	)
	return cmd
}

// secretCmd builds the set/delete pair for one keyring entry.
func secretCmd(opts *options, name, what, key string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Manage the " + what,
	}

	set := &cobra.Command{
		Use:   "set [value]",
		Short: "Store the " + what + " (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if len(args) == 1 {
				value = args[0]
			} else {
				var err error
				if value, err = readLine(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return fmt.Errorf("%s must not be empty", name)
			}

			v, err := opts.openVault()
			if err != nil {
				return err
			}
			if err := v.Set(key, value); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Stored %s\n", name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the " + what,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := opts.openVault()
			if err != nil {
				return err
			}
			if err := v.Delete(key); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Deleted %s\n", name)
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return line, nil
}
