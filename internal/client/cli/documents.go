package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/services"
	"github.com/dmitrijs2005/evadocs/internal/client/view"
	"github.com/dmitrijs2005/evadocs/internal/common"
)

// handleError renders err and drops the UI state when the session was
// rejected by the backend.
func (a *App) handleError(ctx context.Context, err error) {
	if errors.Is(err, common.ErrSessionExpired) {
		a.resetUI()
	}
	a.logger.Debug(ctx, "command failed", "error", err)
	printlnFn("Error:", describeError(err))
}

// Show switches to section and prints what it holds.
func (a *App) Show(ctx context.Context, name string) error {
	section, err := view.ParseSection(name)
	if err != nil {
		return err
	}
	r, err := a.view.Switch(ctx, section)
	renderSections(a.out, section)
	if err != nil {
		return err
	}

	switch section {
	case view.SectionUpload:
		if parent := a.view.Parent(); parent != 0 {
			printlnFn(fmt.Sprintf("Nueva versión del documento %d: usa convert <path>", parent))
		} else {
			printlnFn("Formatos: " + strings.Join(services.SupportedExtensions(), " ") + " (máx. 50MB). Usa convert <path>")
		}
	case view.SectionHistory:
		renderHistory(a.out, r)
	case view.SectionShared:
		renderShared(a.out, r)
	case view.SectionValidate:
		if a.signer.Simulation() {
			printlnFn("Modo simulación: usa check para una validación de demostración o check <pdf>")
		} else {
			printlnFn("Usa check <pdf> para validar las firmas de un PDF")
		}
	}
	return nil
}

// Convert converts path, uploading it as a new version when one is pending.
func (a *App) Convert(ctx context.Context, path string) error {
	if a.view.Section() != view.SectionUpload {
		if _, err := a.view.Switch(ctx, view.SectionUpload); err != nil {
			return err
		}
	}
	a.view.Select(path)
	defer a.view.ClearSelection()

	printlnFn("Enviando a servidor...")
	res, err := a.docs.Convert(ctx, path, a.view.Parent())
	if err != nil {
		return err
	}

	if res.StaleSession {
		printlnFn("Tu sesión ha expirado. Por favor, cierra sesión y vuelve a entrar para guardar en tu historial.")
	}
	switch {
	case res.Saved && res.Path != "":
		printlnFn(fmt.Sprintf("✅ %s guardado en tu historial y listo para descargar: %s", res.PDFName, res.Path))
	case res.Saved:
		printlnFn(fmt.Sprintf("✅ %s guardado en tu historial", res.PDFName))
	default:
		printlnFn(fmt.Sprintf("✅ %s convertido exitosamente a PDF: %s (%s)", filepath.Base(path), res.Path, view.FormatFileSize(res.Size)))
	}
	return nil
}

// NewVersion marks docID as the parent of the next conversion.
func (a *App) NewVersion(ctx context.Context, docID int64) error {
	if !a.isLoggedIn(ctx) {
		return common.ErrNotAuthenticated
	}
	a.view.BeginNewVersion(docID)
	printlnFn(fmt.Sprintf("Selecciona el archivo para la nueva versión del documento %d: convert <path>", docID))
	return nil
}

func (a *App) Download(ctx context.Context, versionID int64) error {
	printlnFn("Descargando archivo desde el servidor...")
	p, err := a.docs.Download(ctx, versionID)
	if err != nil {
		return err
	}
	printlnFn("Archivo guardado en " + p)
	return nil
}

func (a *App) Delete(ctx context.Context, docID int64) error {
	ok, err := confirm(a.reader, fmt.Sprintf("¿Eliminar el documento %d?", docID), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.docs.Delete(ctx, docID); err != nil {
		return err
	}
	printlnFn("Documento eliminado correctamente")
	return a.refreshList(ctx)
}

// Share prompts for the recipient and permission level.
func (a *App) Share(ctx context.Context, docID int64) error {
	email, err := getSimpleText(a.reader, "Correo del destinatario (@itb.edu.ec)", a.out)
	if err != nil {
		return err
	}
	level, err := getSimpleText(a.reader, "Permiso: viewer (lector) o editor [viewer]", a.out)
	if err != nil {
		return err
	}
	if level == "" {
		level = models.PermissionViewer
	}
	if _, err := a.docs.Share(ctx, docID, email, strings.ToLower(level)); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Documento compartido con %s como %s", email, view.RoleLabel(strings.ToLower(level))))
	return nil
}

// Sign signs docID. Simulation asks only for the password. A document known
// from the listing must be a PDF; unknown ids are left to the backend.
func (a *App) Sign(ctx context.Context, docID int64) error {
	if d, ok := a.findDocument(ctx, docID); ok && !d.CanSign() {
		return common.ErrNotSignable
	}

	var p12Path string
	if !a.signer.Simulation() {
		var err error
		if p12Path, err = getSimpleText(a.reader, "Ruta del certificado .p12", a.out); err != nil {
			return err
		}
	}
	password, err := getPassword(a.reader, "Contraseña del certificado", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.signer.Sign(ctx, docID, p12Path, string(password))
	if err != nil {
		return err
	}
	if a.signer.Simulation() {
		printlnFn(fmt.Sprintf("✅ Firma Simulada con éxito (%s). Certificado usado: ROBERTO ALEXIS NEGRETE", res.Version.VersionNumber))
		return nil
	}
	printlnFn(fmt.Sprintf("✅ Documento firmado exitosamente: %s", view.VersionLabel(res.Version.VersionNumber)))
	return a.refreshList(ctx)
}

// Check validates the signatures of path.
func (a *App) Check(ctx context.Context, path string) error {
	if _, err := a.view.Switch(ctx, view.SectionValidate); err != nil {
		return err
	}
	a.view.Select(path)
	defer a.view.ClearSelection()

	printlnFn("Analizando firmas digitales del PDF...")
	rep, err := a.signer.Validate(ctx, path)
	if err != nil {
		return fmt.Errorf("validation service: %w", err)
	}
	renderReport(a.out, rep)
	return nil
}

func (a *App) RemoveLocal(ctx context.Context, id int64) error {
	ok, err := confirm(a.reader, "¿Estás seguro de que deseas eliminar este archivo del historial?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.docs.DeleteLocal(ctx, id); err != nil {
		return err
	}
	printlnFn("Elemento eliminado del historial")
	return a.refreshList(ctx)
}

func (a *App) ExportLocal(ctx context.Context, id int64) error {
	p, err := a.docs.ExportLocal(ctx, id)
	if err != nil {
		return err
	}
	printlnFn("PDF descargado: " + p)
	return nil
}

func (a *App) ClearLocal(ctx context.Context) error {
	ok, err := confirm(a.reader, "¿Borrar todo el historial local?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.docs.ClearLocal(ctx); err != nil {
		return err
	}
	printlnFn("Historial local eliminado")
	return a.refreshList(ctx)
}

// Simulation toggles simulated signing and validation.
func (a *App) Simulation(ctx context.Context, arg string) error {
	switch strings.ToLower(arg) {
	case "on":
		a.signer.SetSimulation(true)
	case "off":
		a.signer.SetSimulation(false)
	default:
		return &usageError{usage: "sim on|off"}
	}
	state := "DESACTIVADO"
	if a.signer.Simulation() {
		state = "ACTIVADO"
	}
	a.logger.Info(ctx, "simulation toggled", "on", a.signer.Simulation())
	printlnFn("Modo Simulación: " + state)
	return nil
}

// findDocument looks docID up in the last listing, reloading it once on a
// miss. A failed reload counts as a miss.
func (a *App) findDocument(ctx context.Context, docID int64) (models.Document, bool) {
	lookup := func(r view.Reconciled) (models.Document, bool) {
		for _, list := range [][]models.Document{r.Owned, r.Shared} {
			for _, d := range list {
				if d.ID == docID {
					return d, true
				}
			}
		}
		return models.Document{}, false
	}
	if d, ok := lookup(a.view.Last()); ok {
		return d, true
	}
	r, err := a.view.Refresh(ctx)
	if err != nil {
		a.logger.Debug(ctx, "document lookup reload failed", "error", err)
		return models.Document{}, false
	}
	return lookup(r)
}

// refreshList re-renders the active list section after a change.
func (a *App) refreshList(ctx context.Context) error {
	section := a.view.Section()
	if section != view.SectionHistory && section != view.SectionShared {
		return nil
	}
	r, err := a.view.Refresh(ctx)
	if err != nil {
		return err
	}
	if section == view.SectionHistory {
		renderHistory(a.out, r)
	} else {
		renderShared(a.out, r)
	}
	return nil
}
