package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/evadocs/internal/client/client"
	"github.com/dmitrijs2005/evadocs/internal/client/services"
	"github.com/dmitrijs2005/evadocs/internal/common"
)

const (
	msgSessionExpired = "Tu sesión ha expirado. Inicia sesión nuevamente."
	msgUnavailable    = "No se puede conectar al servidor. Verifica que el servidor esté corriendo."
)

// errorMessages maps sentinel errors to user messages. Order matters:
// more specific errors come first since an *client.APIError may wrap one.
var errorMessages = []struct {
	err error
	msg string
}{
	{context.Canceled, "Operación cancelada"},
	{common.ErrSessionExpired, msgSessionExpired},
	{common.ErrNotAuthenticated, "Debes iniciar sesión para realizar esta acción"},
	{common.ErrInvalidEmail, "Debes usar un correo institucional ITB (@itb.edu.ec)"},
	{common.ErrPasswordMismatch, "Las contraseñas no coinciden"},
	{common.ErrTermsNotAccepted, "Debes aceptar los términos y condiciones"},
	{common.ErrMissingResetToken, "El token de recuperación es requerido"},
	{common.ErrUnsupportedFormat, "Formato no soportado. Formatos permitidos: Word (.docx, .doc), Excel (.xlsx, .xls), PowerPoint (.pptx, .ppt), Texto (.txt, .rtf)"},
	{common.ErrFileTooLarge, "Archivo muy grande. Máximo: 50MB"},
	{common.ErrNoFileSelected, "Por favor, seleccione un archivo"},
	{common.ErrInvalidPermission, "Nivel de permiso inválido: usa editor o viewer"},
	{common.ErrMissingCertificate, "Selecciona el certificado .p12 e ingresa su contraseña"},
	{common.ErrMissingPassword, "Ingresa la contraseña del certificado"},
	{common.ErrNotSignable, "Solo se pueden firmar documentos PDF"},
	{common.ErrorNotFound, "Elemento no encontrado"},
	{client.ErrUserNotFound, "Usuario no encontrado"},
	{client.ErrBadCertificate, "Certificado inválido o contraseña incorrecta"},
	{client.ErrUnavailable, msgUnavailable},
	{client.ErrTimeout, "El servidor tardó demasiado en responder. Intenta nuevamente."},
	{client.ErrNotPDF, "El servidor no devolvió un PDF válido"},
	{client.ErrEmptyPDF, "El PDF recibido está vacío"},
	{client.ErrBadResponse, "Respuesta inválida del servidor"},
	{client.ErrUnauthorized, "Credenciales incorrectas o sesión no válida"},
	{fs.ErrNotExist, "No se encontró el archivo"},
}

// describeError turns any error returned by a command into the message
// shown to the user.
func describeError(err error) string {
	if err == nil {
		return ""
	}

	var short *services.ShortPasswordError
	if errors.As(err, &short) {
		return fmt.Sprintf("La contraseña debe tener al menos %d caracteres", short.Min)
	}
	var usage *usageError
	if errors.As(err, &usage) {
		return "Uso: " + usage.usage
	}

	// A rejected login carries the backend's explanation.
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && errors.Is(apiErr.Err, client.ErrUnauthorized) &&
		apiErr.Message != "" && !errors.Is(err, common.ErrSessionExpired) {
		return apiErr.Message
	}

	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}

	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("Error %d", apiErr.Status)
	}
	return err.Error()
}

// usageError reports a malformed command line.
type usageError struct {
	usage string
}

func (e *usageError) Error() string { return "usage: " + e.usage }
