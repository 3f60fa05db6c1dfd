package view

import "github.com/dmitrijs2005/evadocs/internal/client/models"

// Reconciled is the merged view shown in the history and shared sections.
type Reconciled struct {
	Owned     []models.Document
	Shared    []models.Document
	LocalOnly []models.ConversionRecord
}

// Empty reports whether there is nothing to show at all.
func (r Reconciled) Empty() bool {
	return len(r.Owned) == 0 && len(r.Shared) == 0 && len(r.LocalOnly) == 0
}

// Reconcile partitions remote documents by ownership and keeps only the
// local records the server does not already know about. A local record is
// dropped when a remote name matches its original name, its stored PDF
// name, or its original name with the extension replaced by ".pdf".
// Both inputs keep their relative order.
func Reconcile(local []models.ConversionRecord, remote []models.Document) Reconciled {
	var out Reconciled

	names := make(map[string]struct{}, len(remote))
	for _, d := range remote {
		names[d.Name] = struct{}{}
		if d.IsOwner {
			out.Owned = append(out.Owned, d)
		} else {
			out.Shared = append(out.Shared, d)
		}
	}

	for _, rec := range local {
		if known(names, rec.OriginalName, rec.PDFName, models.PDFNameFor(rec.OriginalName)) {
			continue
		}
		out.LocalOnly = append(out.LocalOnly, rec)
	}
	return out
}

func known(names map[string]struct{}, candidates ...string) bool {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := names[c]; ok {
			return true
		}
	}
	return false
}
