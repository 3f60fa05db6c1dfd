package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/view"
)

const (
	titleOwned     = "Mis Documentos"
	titleLocal     = "Conversiones locales"
	titleShared    = "Documentos Compartidos"
	emptyHistory   = "No hay archivos en tu historial"
	emptyShared    = "No tienes documentos compartidos"
	unknownSigner  = "Desconocido"
	notAvailableTS = "N/A"
)

// renderHistory writes the owned and local sections.
func renderHistory(w io.Writer, r view.Reconciled) {
	if len(r.Owned) == 0 && len(r.LocalOnly) == 0 {
		fmt.Fprintln(w, emptyHistory)
		return
	}
	if len(r.Owned) > 0 {
		fmt.Fprintln(w, titleOwned)
		for _, d := range r.Owned {
			fmt.Fprintln(w, "  "+view.DocumentRow(d).String())
		}
	}
	if len(r.LocalOnly) > 0 {
		fmt.Fprintln(w, titleLocal)
		for _, rec := range r.LocalOnly {
			fmt.Fprintln(w, "  "+view.LocalRow(rec))
		}
	}
}

func renderShared(w io.Writer, r view.Reconciled) {
	if len(r.Shared) == 0 {
		fmt.Fprintln(w, emptyShared)
		return
	}
	fmt.Fprintln(w, titleShared)
	for _, d := range r.Shared {
		fmt.Fprintln(w, "  "+view.DocumentRow(d).String())
	}
}

// renderReport writes the validation outcome followed by its raw JSON.
func renderReport(w io.Writer, rep *models.SignatureReport) {
	status := "❌ INVÁLIDA"
	if rep.IsValid {
		status = "✅ VÁLIDA"
	}
	signer := rep.SignerName
	if signer == "" {
		signer = unknownSigner
	}
	ts := notAvailableTS
	if !rep.Timestamp.IsZero() {
		ts = rep.Timestamp.Local().Format(time.DateTime)
	}
	level := "Firma no reconocida"
	if rep.Trusted {
		level = "Certificado de Integridad"
	}

	fmt.Fprintln(w, "Resultado de la Validación")
	fmt.Fprintf(w, "  Estado de Firma:     %s\n", status)
	fmt.Fprintf(w, "  Firmante detectado:  %s\n", signer)
	fmt.Fprintf(w, "  Fecha y Hora:        %s\n", ts)
	fmt.Fprintf(w, "  Nivel de Seguridad:  %s\n", level)
	if rep.Integrity != "" {
		fmt.Fprintf(w, "  Integridad:          %s\n", rep.Integrity)
	}

	raw, err := json.MarshalIndent(rep, "  ", "  ")
	if err == nil {
		fmt.Fprintln(w, "Respuesta JSON:")
		fmt.Fprintln(w, "  "+string(raw))
	}
}

func renderSections(w io.Writer, active view.Section) {
	names := []view.Section{view.SectionUpload, view.SectionHistory, view.SectionShared, view.SectionValidate}
	parts := make([]string, len(names))
	for i, s := range names {
		if s == active {
			parts[i] = "[" + s.String() + "]"
		} else {
			parts[i] = s.String()
		}
	}
	fmt.Fprintln(w, strings.Join(parts, " | "))
}
