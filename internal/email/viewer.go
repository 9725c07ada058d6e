package email

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nhle/transcript-insights/internal/model"
)

// LatestTab is the tab that shows, and allows editing of, the current draft.
const LatestTab = "latest"

// ErrReadOnlyVersion is returned when editing while a historical version
// is displayed.
var ErrReadOnlyVersion = errors.New("historical versions are read-only")

// Viewer is the display state of the email editor: which tab is selected
// and the content buffer shown to the user. Selecting a historical version
// changes only the buffer, never the underlying draft.
type Viewer struct {
	draft    model.EmailDraft
	versions []model.EmailDraft
	selected string
	buffer   string
}

// NewViewer returns a viewer showing draft on the latest tab.
func NewViewer(draft model.EmailDraft, versions []model.EmailDraft) *Viewer {
	v := &Viewer{}
	v.Reset(draft, versions)
	return v
}

// Reset replaces the draft and history, selects the latest tab and loads
// the draft content into the buffer.
func (v *Viewer) Reset(draft model.EmailDraft, versions []model.EmailDraft) {
	v.draft = draft
	v.versions = versions
	v.selected = LatestTab
	v.buffer = draft.Content
}

// Draft returns the current draft.
func (v *Viewer) Draft() model.EmailDraft { return v.draft }

// Versions returns the version history.
func (v *Viewer) Versions() []model.EmailDraft { return v.versions }

// Selected returns the selected tab.
func (v *Viewer) Selected() string { return v.selected }

// Content returns the displayed buffer.
func (v *Viewer) Content() string { return v.buffer }

// Editable reports whether the buffer may be edited.
func (v *Viewer) Editable() bool { return v.selected == LatestTab }

// Tabs returns the selectable tabs. Version tabs are only offered once
// there is more than one version.
func (v *Viewer) Tabs() []string {
	if len(v.versions) <= 1 {
		return []string{LatestTab}
	}
	tabs := make([]string, 0, len(v.versions)+1)
	tabs = append(tabs, LatestTab)
	for _, d := range v.versions {
		tabs = append(tabs, VersionTab(d.Version))
	}
	return tabs
}

// VersionTab returns the tab name of a version number.
func VersionTab(version int) string {
	return "v" + strconv.Itoa(version)
}

// Select switches to tab. The latest tab restores the draft content,
// discarding edits in progress.
func (v *Viewer) Select(tab string) error {
	if tab == LatestTab {
		v.selected = LatestTab
		v.buffer = v.draft.Content
		return nil
	}

	n, err := strconv.Atoi(strings.TrimPrefix(tab, "v"))
	if err != nil || !strings.HasPrefix(tab, "v") {
		return fmt.Errorf("unknown version tab %q", tab)
	}
	for _, d := range v.versions {
		if d.Version == n {
			v.selected = tab
			v.buffer = d.Content
			return nil
		}
	}
	return fmt.Errorf("version %d not found", n)
}

// Edit replaces the buffer. Only the latest tab is editable.
func (v *Viewer) Edit(content string) error {
	if !v.Editable() {
		return ErrReadOnlyVersion
	}
	v.buffer = content
	return nil
}
