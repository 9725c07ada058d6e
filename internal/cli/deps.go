package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/credential"
	"github.com/nhle/transcript-insights/internal/email"
	"github.com/nhle/transcript-insights/internal/insight"
	"github.com/nhle/transcript-insights/internal/mailbox"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/store"
	"github.com/nhle/transcript-insights/internal/theme"
	"github.com/nhle/transcript-insights/internal/transcript"
)

// tokenEnv overrides the API token stored in the keyring.
const tokenEnv = "TRANSCRIPTS_API_TOKEN"

// deps is everything a command needs, built from the configuration.
type deps struct {
	cfg      *model.AppConfig
	store    store.Store
	client   *api.Client
	files    *transcript.Service
	insights *insight.Service
	email    *email.Service
	vault    *credential.Vault

	close func() error
}

// loadDeps reads the configuration and wires the services.
func loadDeps(opts *options) (*deps, error) {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	theme.Use(cfg.Display.Theme)

	d := &deps{cfg: cfg, close: func() error { return nil }}

	if opts.ephemeral {
		d.store = store.NewMemoryStore()
	} else {
		s, err := store.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		d.store = s
		d.close = s.Close
	}

	token := os.Getenv(tokenEnv)
	if token == "" {
		if v, err := d.openVault(opts); err == nil {
			if token, err = v.Lookup(credential.APITokenKey); err != nil {
				log.Printf("reading api token: %v", err)
			}
		}
	}

	d.client = api.NewClient(cfg.API.BaseURL, token, cfg.API.Timeout())
	d.files = transcript.NewService(d.client, d.store)
	d.insights = insight.NewService(d.client, d.store)
	d.email = email.NewService(d.client, d.store)
	return d, nil
}

// openVault opens the keyring once. A keyring that cannot be opened is
// logged and reported to the caller.
func (d *deps) openVault(opts *options) (*credential.Vault, error) {
	if d.vault != nil {
		return d.vault, nil
	}
	v, err := opts.openVault()
	if err != nil {
		log.Printf("keyring unavailable: %v", err)
		return nil, err
	}
	d.vault = v
	return v, nil
}

// errMailboxDisabled is returned when saving to IMAP without a mailbox.
var errMailboxDisabled = errors.New("no mailbox configured: set mailbox.enabled, host and username")

// drafts returns the IMAP drafts saver, or errMailboxDisabled.
func (d *deps) drafts(opts *options) (*mailbox.Drafts, error) {
	mc := d.cfg.Mailbox
	if !mc.Enabled || mc.Host == "" || mc.Username == "" {
		return nil, errMailboxDisabled
	}
	v, err := d.openVault(opts)
	if err != nil {
		return nil, err
	}
	password, err := v.Get(credential.IMAPPasswordKey)
	if err != nil {
		return nil, fmt.Errorf("mailbox password: %w", err)
	}
	client := mailbox.NewIMAPClient(mc.Host, mc.Port, mc.Username, password, mc.TLS)
	return mailbox.NewDrafts(client, mc.Drafts), nil
}
