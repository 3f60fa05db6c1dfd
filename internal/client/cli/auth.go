package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/evadocs/internal/client/services"
	"github.com/dmitrijs2005/evadocs/internal/common"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

// Register prompts for e-mail, password, confirmation and terms acceptance
// and creates the account.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Correo institucional (@itb.edu.ec)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Contraseña (mínimo 8 caracteres)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirmation, err := getPassword(a.reader, "Confirmar contraseña", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)
	terms, err := confirm(a.reader, "¿Aceptas los términos y condiciones?", a.out)
	if err != nil {
		return err
	}

	u, err := a.auth.Register(ctx, services.RegisterRequest{
		Email:       email,
		Password:    string(password),
		Confirm:     string(confirmation),
		AcceptTerms: terms,
	})
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("¡Cuenta creada exitosamente para %s! Ahora puedes iniciar sesión.", u.Email))
	return nil
}

// Login prompts for credentials, offering the last used e-mail.
func (a *App) Login(ctx context.Context) error {
	prompt := "Correo institucional"
	last := a.auth.LastEmail(ctx)
	if last != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, last)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = last
	}

	password, err := getPassword(a.reader, "Contraseña", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	a.setUser(u)
	a.view.Reset()
	printlnFn(fmt.Sprintf("¡Bienvenido al EVA ITB, %s!", u.DisplayName()))
	return nil
}

// Logout clears the session together with local history and cookies.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.resetUI()
	printlnFn("Sesión cerrada")
	return nil
}

func (a *App) Recover(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Correo institucional para recuperar la contraseña", a.out)
	if err != nil {
		return err
	}
	msg, err := a.auth.RequestPasswordRecovery(ctx, email)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Si el correo está registrado, recibirás un enlace de recuperación."
	}
	printlnFn(msg)
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Token de recuperación", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Nueva contraseña (mínimo 8 caracteres)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirmation, err := getPassword(a.reader, "Confirmar contraseña", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	msg, err := a.auth.ResetPassword(ctx, token, string(password), string(confirmation))
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Contraseña actualizada. Ya puedes iniciar sesión."
	}
	printlnFn(msg)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("[%s] %s <%s>\n%s", u.Initials(), u.DisplayName(), u.Email, u.RoleLabel()))
	return nil
}
