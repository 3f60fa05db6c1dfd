package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/config"
	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/services"
	"github.com/dmitrijs2005/evadocs/internal/client/view"
	"github.com/dmitrijs2005/evadocs/internal/common"
	"github.com/dmitrijs2005/evadocs/internal/logging"
)

type fakeAuth struct {
	loggedIn bool
	user     *models.User
	last     string

	loginEmail, loginPass string
	loginErr              error

	regReq services.RegisterRequest
	regErr error

	recoveryEmail string
	resetToken    string
	resetPass     string
	resetConfirm  string

	logoutCalls int
	logoutErr   error
	pingErr     error
	pings       int
	closed      bool
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*models.User, error) {
	f.loginEmail, f.loginPass = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.loggedIn = true
	f.user = &models.User{Email: email, Role: models.RoleUser}
	return f.user, nil
}

func (f *fakeAuth) Register(_ context.Context, req services.RegisterRequest) (*models.User, error) {
	f.regReq = req
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{Email: req.Email, Role: models.RoleUser}, nil
}

func (f *fakeAuth) RequestPasswordRecovery(_ context.Context, email string) (string, error) {
	f.recoveryEmail = email
	return "", nil
}

func (f *fakeAuth) ResetPassword(_ context.Context, token, password, confirm string) (string, error) {
	f.resetToken, f.resetPass, f.resetConfirm = token, password, confirm
	return "ok", nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	f.loggedIn = false
	f.user = nil
	return f.logoutErr
}

func (f *fakeAuth) CurrentUser(context.Context) (*models.User, error) {
	if !f.loggedIn || f.user == nil {
		return nil, common.ErrNotAuthenticated
	}
	return f.user, nil
}

func (f *fakeAuth) IsAuthenticated(context.Context) bool { return f.loggedIn }
func (f *fakeAuth) LastEmail(context.Context) string     { return f.last }
func (f *fakeAuth) Ping(context.Context) error           { f.pings++; return f.pingErr }
func (f *fakeAuth) Close(context.Context) error          { f.closed = true; return nil }

type fakeDocs struct {
	convertPath   string
	convertParent int64
	convertRes    *services.ConvertResult
	convertErr    error

	reconciled view.Reconciled
	loads      int

	downloaded int64
	deleted    int64
	deleteErr  error

	shareDoc          int64
	shareEmail, level string
	shareErr          error

	removed  int64
	exported int64
	cleared  bool
}

func (f *fakeDocs) Convert(_ context.Context, path string, parentID int64) (*services.ConvertResult, error) {
	f.convertPath, f.convertParent = path, parentID
	if f.convertErr != nil {
		return nil, f.convertErr
	}
	if f.convertRes != nil {
		return f.convertRes, nil
	}
	return &services.ConvertResult{Path: "/out/x.pdf", PDFName: "x.pdf", Size: 2048}, nil
}

func (f *fakeDocs) Reconciled(context.Context) (view.Reconciled, error) {
	f.loads++
	return f.reconciled, nil
}

func (f *fakeDocs) Download(_ context.Context, versionID int64) (string, error) {
	f.downloaded = versionID
	return "/out/documento.pdf", nil
}

func (f *fakeDocs) Delete(_ context.Context, docID int64) error {
	f.deleted = docID
	return f.deleteErr
}

func (f *fakeDocs) Share(_ context.Context, docID int64, email, level string) (*models.Permission, error) {
	f.shareDoc, f.shareEmail, f.level = docID, email, level
	if f.shareErr != nil {
		return nil, f.shareErr
	}
	return &models.Permission{DocumentID: docID, PermissionLevel: level}, nil
}

func (f *fakeDocs) DeleteLocal(_ context.Context, id int64) error { f.removed = id; return nil }

func (f *fakeDocs) ExportLocal(_ context.Context, id int64) (string, error) {
	f.exported = id
	return "/out/a.pdf", nil
}

func (f *fakeDocs) ClearLocal(context.Context) error { f.cleared = true; return nil }

type fakeSigner struct {
	sim       bool
	signDoc   int64
	signP12   string
	signPass  string
	signErr   error
	validated string
	report    *models.SignatureReport
}

func (f *fakeSigner) Sign(_ context.Context, docID int64, p12Path, password string) (*models.SignResult, error) {
	f.signDoc, f.signP12, f.signPass = docID, p12Path, password
	if f.signErr != nil {
		return nil, f.signErr
	}
	return &models.SignResult{Status: "success", Version: models.Version{VersionNumber: "v1.1-signed"}}, nil
}

func (f *fakeSigner) Validate(_ context.Context, path string) (*models.SignatureReport, error) {
	f.validated = path
	if f.report != nil {
		return f.report, nil
	}
	return &models.SignatureReport{IsValid: true, SignerName: "X"}, nil
}

func (f *fakeSigner) SetSimulation(on bool) { f.sim = on }
func (f *fakeSigner) Simulation() bool      { return f.sim }

type fakeWatcher struct {
	watched chan time.Duration
}

func (f *fakeWatcher) Watch(ctx context.Context, interval time.Duration, onExpire func(ctx context.Context)) {
	if f.watched != nil {
		f.watched <- interval
	}
	<-ctx.Done()
}

// captured collects everything sent through printlnFn.
type captured struct {
	lines []string
}

func capturePrintln(t *testing.T) *captured {
	t.Helper()
	c := &captured{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		c.lines = append(c.lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return c
}

func (c *captured) joined() string {
	var b bytes.Buffer
	for _, l := range c.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// stubInputs replaces the interactive helpers with scripted answers.
func stubInputs(t *testing.T, texts []string, passwords []string, confirms ...bool) {
	t.Helper()
	origST, origGP, origC := getSimpleText, getPassword, confirm
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ *bufio.Reader, _ string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}
	confirm = func(_ *bufio.Reader, _ string, _ io.Writer) (bool, error) {
		if len(confirms) == 0 {
			return false, nil
		}
		ok := confirms[0]
		confirms = confirms[1:]
		return ok, nil
	}
	t.Cleanup(func() {
		getSimpleText, getPassword, confirm = origST, origGP, origC
	})
}

func newTestApp(auth *fakeAuth, docs *fakeDocs, signer *fakeSigner) (*App, *bytes.Buffer) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	a := NewApp(cfg, auth, docs, signer, &fakeWatcher{}, logging.Discard())
	out := &bytes.Buffer{}
	a.out = out
	return a, out
}
