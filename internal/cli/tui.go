package cli

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/transcript-insights/internal/app"
	"github.com/nhle/transcript-insights/internal/auth"
)

const logFile = "transcripts.log"

func runTUI(_ *cobra.Command, opts *options) error {
	d, err := loadDeps(opts)
	if err != nil {
		return err
	}
	defer d.close()

	// The UI owns the terminal; logs go to a file next to the state.
	f, err := tea.LogToFile(filepath.Join(filepath.Dir(d.cfg.Storage.Path), logFile), "transcripts")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	services := app.Services{
		Auth:      auth.NewMockProvider(d.cfg.Auth.LoginDelay()),
		Files:     d.files,
		Insights:  d.insights,
		Email:     d.email,
		ExportDir: opts.exportDir,
	}
	if strings.Contains(d.cfg.Mailbox.Username, "@") {
		services.DefaultFrom = d.cfg.Mailbox.Username
	}
	if drafts, err := d.drafts(opts); err == nil {
		services.Drafts = drafts
	} else {
		log.Printf("imap drafts disabled: %v", err)
	}

	p := tea.NewProgram(app.New(services), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
