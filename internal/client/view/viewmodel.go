package view

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Section is one of the mutually exclusive screens of the client.
type Section int

const (
	SectionUpload Section = iota
	SectionHistory
	SectionShared
	SectionValidate
)

var sectionNames = [...]string{"upload", "history", "shared", "validate"}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return fmt.Sprintf("section(%d)", int(s))
	}
	return sectionNames[s]
}

// ParseSection maps a section name back to its value.
func ParseSection(name string) (Section, error) {
	for i, n := range sectionNames {
		if strings.EqualFold(n, name) {
			return Section(i), nil
		}
	}
	return 0, fmt.Errorf("unknown section %q", name)
}

// Loader produces a fresh reconciliation.
type Loader interface {
	Load(ctx context.Context) (Reconciled, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Reconciled, error)

func (f LoaderFunc) Load(ctx context.Context) (Reconciled, error) { return f(ctx) }

// ViewModel is the client's navigation state: the active section, the
// file picked for conversion or validation, the parent document of a
// pending new version and the last reconciled view.
type ViewModel struct {
	loader Loader

	mu       sync.Mutex
	section  Section
	selected string
	parentID int64
	last     Reconciled
}

// NewViewModel starts in the upload section.
func NewViewModel(loader Loader) *ViewModel {
	return &ViewModel{loader: loader, section: SectionUpload}
}

// Section returns the active section.
func (v *ViewModel) Section() Section {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.section
}

// Switch activates section. History and Shared reload the reconciled view;
// on a load error the section still changes and the previous view is kept.
func (v *ViewModel) Switch(ctx context.Context, section Section) (Reconciled, error) {
	if section < SectionUpload || section > SectionValidate {
		return Reconciled{}, fmt.Errorf("unknown section %d", int(section))
	}

	v.mu.Lock()
	v.section = section
	last := v.last
	v.mu.Unlock()

	if section != SectionHistory && section != SectionShared {
		return last, nil
	}
	return v.Refresh(ctx)
}

// Refresh reloads the reconciled view regardless of the active section.
func (v *ViewModel) Refresh(ctx context.Context) (Reconciled, error) {
	r, err := v.loader.Load(ctx)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		return v.last, err
	}
	v.last = r
	return r, nil
}

// Last returns the most recent reconciliation.
func (v *ViewModel) Last() Reconciled {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

// Select records the file chosen for the next conversion or validation.
func (v *ViewModel) Select(path string) {
	v.mu.Lock()
	v.selected = path
	v.mu.Unlock()
}

// Selected returns the chosen file, if any.
func (v *ViewModel) Selected() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected, v.selected != ""
}

// BeginNewVersion marks docID as the parent of the next upload and
// switches to the upload section.
func (v *ViewModel) BeginNewVersion(docID int64) {
	v.mu.Lock()
	v.parentID = docID
	v.section = SectionUpload
	v.mu.Unlock()
}

// Parent returns the pending parent document id, zero when none.
func (v *ViewModel) Parent() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.parentID
}

// ClearSelection forgets the chosen file and any pending parent.
func (v *ViewModel) ClearSelection() {
	v.mu.Lock()
	v.selected = ""
	v.parentID = 0
	v.mu.Unlock()
}

// Reset drops all state, e.g. after a logout.
func (v *ViewModel) Reset() {
	v.mu.Lock()
	v.section = SectionUpload
	v.selected = ""
	v.parentID = 0
	v.last = Reconciled{}
	v.mu.Unlock()
}
