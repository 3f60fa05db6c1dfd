package models

import (
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/evadocs/internal/timex"
)

// Permission levels a document can be held or shared with.
const (
	PermissionOwner  = "owner"
	PermissionEditor = "editor"
	PermissionViewer = "viewer"
)

// Version is one stored revision of a remote document.
type Version struct {
	ID            int64           `json:"id"`
	DocumentID    int64           `json:"document_id"`
	VersionNumber string          `json:"version_number"`
	FileSize      int64           `json:"file_size"`
	MimeType      string          `json:"mime_type,omitempty"`
	IsLatest      bool            `json:"is_latest"`
	CreatedAt     timex.Timestamp `json:"created_at"`
}

// Document is a server-side document visible to the current user.
type Document struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	UserID           int64           `json:"user_id"`
	CreatedAt        timex.Timestamp `json:"created_at"`
	LatestVersion    *Version        `json:"latest_version,omitempty"`
	Permission       string          `json:"permission,omitempty"`
	IsOwner          bool            `json:"is_owner"`
	SharedWithOthers bool            `json:"shared_with_others"`
}

// IsPDF reports whether the document name has a .pdf extension.
func (d Document) IsPDF() bool {
	return strings.EqualFold(filepath.Ext(d.Name), ".pdf")
}

// EffectivePermission is Permission, defaulting to owner or viewer from
// IsOwner when the backend left it empty.
func (d Document) EffectivePermission() string {
	if d.Permission != "" {
		return d.Permission
	}
	if d.IsOwner {
		return PermissionOwner
	}
	return PermissionViewer
}

func (d Document) owned() bool { return d.EffectivePermission() == PermissionOwner }

// CanShare reports whether the user may share the document.
func (d Document) CanShare() bool { return d.owned() }

// CanDelete reports whether the user may delete the document.
func (d Document) CanDelete() bool { return d.owned() }

// CanAddVersion reports whether the user may upload a new version.
func (d Document) CanAddVersion() bool {
	return d.owned() || d.EffectivePermission() == PermissionEditor
}

// CanSign reports whether the document can be signed.
func (d Document) CanSign() bool { return d.IsPDF() }

// IsShared is true for documents shared with the user or by the user.
func (d Document) IsShared() bool { return !d.owned() || d.SharedWithOthers }

// ValidPermissionLevel reports whether level may be granted through sharing.
func ValidPermissionLevel(level string) bool {
	return level == PermissionEditor || level == PermissionViewer
}

// Permission is the grant returned by a successful share.
type Permission struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	DocumentID      int64           `json:"document_id"`
	PermissionLevel string          `json:"permission_level"`
	CreatedAt       timex.Timestamp `json:"created_at"`
}
