package view

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
)

const (
	notAvailable   = "N/A"
	defaultVersion = "1.0"
	sharedBadge    = "Compartido"
)

// Action is something the user can do with a listed document.
type Action string

const (
	ActionDownload   Action = "download"
	ActionSign       Action = "sign"
	ActionShare      Action = "share"
	ActionNewVersion Action = "version"
	ActionDelete     Action = "delete"
)

// Row is the textual rendering of one remote document.
type Row struct {
	ID        int64
	VersionID int64
	Name      string
	Version   string
	Role      string
	Shared    bool
	Size      string
	Date      string
	Actions   []Action
}

// VersionLabel strips a leading "v" and returns "v<number>", defaulting to
// version 1.0.
func VersionLabel(number string) string {
	n := strings.TrimSpace(number)
	n = strings.TrimPrefix(strings.TrimPrefix(n, "v"), "V")
	if n == "" {
		n = defaultVersion
	}
	return "v" + n
}

// RoleLabel is the display name of a permission level.
func RoleLabel(permission string) string {
	switch permission {
	case models.PermissionOwner:
		return "Propietario"
	case models.PermissionEditor:
		return "Editor"
	default:
		return "Lector"
	}
}

var sizeUnits = [...]string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with 1024-based units and at most two
// decimals, e.g. "1.5 KB".
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	v, i := float64(n), 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// FormatDate renders t as day/month/year without padding, N/A for zero.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	t = t.Local()
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// Actions lists what the user may do with d, in display order.
func Actions(d models.Document) []Action {
	out := []Action{ActionDownload}
	if d.CanSign() {
		out = append(out, ActionSign)
	}
	if d.CanShare() {
		out = append(out, ActionShare)
	}
	if d.CanAddVersion() {
		out = append(out, ActionNewVersion)
	}
	if d.CanDelete() {
		out = append(out, ActionDelete)
	}
	return out
}

// DocumentRow builds the row for d.
func DocumentRow(d models.Document) Row {
	row := Row{
		ID:      d.ID,
		Name:    d.Name,
		Version: VersionLabel(""),
		Role:    RoleLabel(d.EffectivePermission()),
		Shared:  d.IsShared(),
		Size:    notAvailable,
		Date:    notAvailable,
		Actions: Actions(d),
	}
	if v := d.LatestVersion; v != nil {
		row.VersionID = v.ID
		row.Version = VersionLabel(v.VersionNumber)
		if v.FileSize > 0 {
			row.Size = FormatFileSize(v.FileSize)
		}
		row.Date = FormatDate(v.CreatedAt.Time)
	}
	return row
}

// String renders the row on a single line.
func (r Row) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s  %s  %s", r.ID, r.Name, r.Version, r.Role)
	if r.Shared {
		b.WriteString("  " + sharedBadge)
	}
	fmt.Fprintf(&b, "  %s  %s", r.Size, r.Date)
	if r.VersionID != 0 {
		fmt.Fprintf(&b, "  (version %d)", r.VersionID)
	}
	acts := make([]string, len(r.Actions))
	for i, a := range r.Actions {
		acts[i] = string(a)
	}
	fmt.Fprintf(&b, "  [%s]", strings.Join(acts, " "))
	return b.String()
}

// LocalRow renders a conversion kept only on this machine.
func LocalRow(rec models.ConversionRecord) string {
	return fmt.Sprintf("[%d] %s -> %s  %s  %s  (local)",
		rec.ID, rec.OriginalName, rec.PDFName, FormatFileSize(rec.PDFSize), FormatDate(rec.CreatedAt))
}
