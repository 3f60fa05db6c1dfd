package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/evadocs/internal/client/blobstore"
	"github.com/dmitrijs2005/evadocs/internal/client/client"
	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/evadocs/internal/client/session"
)

// fakeClient implements client.Client for service tests. Every call is
// counted; behaviour comes from the optional function fields.
type fakeClient struct {
	calls map[string]int

	LoginFn       func(email, password string) (string, error)
	MeFn          func() (*models.User, error)
	RegisterFn    func(email, password, role string) (*models.User, error)
	RecoveryFn    func(email string) (string, error)
	ResetFn       func(token, password string) (string, error)
	ConvertFn     func(name string, data []byte) (*client.File, error)
	UploadFn      func(name string, data []byte, parentID int64) (*client.UploadResult, error)
	MyDocumentsFn func() ([]models.Document, error)
	DownloadFn    func(versionID int64) (*client.File, error)
	DeleteFn      func(docID int64) error
	ShareFn       func(docID int64, email, level string) (*models.Permission, error)
	SignFn        func(docID int64, p12Name string, p12 []byte, password string) (*models.Version, error)
	ValidateFn    func(name string, data []byte) (*models.SignatureReport, error)
	PingErr       error
}

func newFakeClient() *fakeClient { return &fakeClient{calls: map[string]int{}} }

func (f *fakeClient) hit(name string) { f.calls[name]++ }

func (f *fakeClient) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) Close() error { f.hit("Close"); return nil }

func (f *fakeClient) Ping(ctx context.Context) error { f.hit("Ping"); return f.PingErr }

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, error) {
	f.hit("Login")
	if f.LoginFn == nil {
		return makeToken(0), nil
	}
	return f.LoginFn(email, password)
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) {
	f.hit("Me")
	if f.MeFn == nil {
		return &models.User{Email: "student@itb.edu.ec", Role: models.RoleUser}, nil
	}
	return f.MeFn()
}

func (f *fakeClient) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	f.hit("Register")
	if f.RegisterFn == nil {
		return &models.User{ID: 1, Email: email, Role: role}, nil
	}
	return f.RegisterFn(email, password, role)
}

func (f *fakeClient) RequestPasswordRecovery(ctx context.Context, email string) (string, error) {
	f.hit("RequestPasswordRecovery")
	if f.RecoveryFn == nil {
		return "sent", nil
	}
	return f.RecoveryFn(email)
}

func (f *fakeClient) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	f.hit("ResetPassword")
	if f.ResetFn == nil {
		return "updated", nil
	}
	return f.ResetFn(token, newPassword)
}

func (f *fakeClient) Convert(ctx context.Context, name string, r io.Reader) (*client.File, error) {
	f.hit("Convert")
	data, _ := io.ReadAll(r)
	if f.ConvertFn == nil {
		return &client.File{Name: models.PDFNameFor(name), ContentType: "application/pdf", Data: []byte("%PDF-1.7 converted")}, nil
	}
	return f.ConvertFn(name, data)
}

func (f *fakeClient) Upload(ctx context.Context, name string, r io.Reader, parentID int64) (*client.UploadResult, error) {
	f.hit("Upload")
	data, _ := io.ReadAll(r)
	if f.UploadFn == nil {
		return &client.UploadResult{PDF: &client.File{Name: models.PDFNameFor(name), Data: []byte("%PDF-1.7 uploaded")}}, nil
	}
	return f.UploadFn(name, data, parentID)
}

func (f *fakeClient) MyDocuments(ctx context.Context) ([]models.Document, error) {
	f.hit("MyDocuments")
	if f.MyDocumentsFn == nil {
		return nil, nil
	}
	return f.MyDocumentsFn()
}

func (f *fakeClient) Download(ctx context.Context, versionID int64) (*client.File, error) {
	f.hit("Download")
	if f.DownloadFn == nil {
		return &client.File{Name: "documento.pdf", Data: []byte("%PDF")}, nil
	}
	return f.DownloadFn(versionID)
}

func (f *fakeClient) DeleteDocument(ctx context.Context, docID int64) error {
	f.hit("DeleteDocument")
	if f.DeleteFn == nil {
		return nil
	}
	return f.DeleteFn(docID)
}

func (f *fakeClient) Share(ctx context.Context, docID int64, email, level string) (*models.Permission, error) {
	f.hit("Share")
	if f.ShareFn == nil {
		return &models.Permission{ID: 1, DocumentID: docID, PermissionLevel: level}, nil
	}
	return f.ShareFn(docID, email, level)
}

func (f *fakeClient) Sign(ctx context.Context, docID int64, p12Name string, p12 io.Reader, password string) (*models.Version, error) {
	f.hit("Sign")
	data, _ := io.ReadAll(p12)
	if f.SignFn == nil {
		return &models.Version{ID: 2, DocumentID: docID, VersionNumber: "1.1"}, nil
	}
	return f.SignFn(docID, p12Name, data, password)
}

func (f *fakeClient) Validate(ctx context.Context, name string, r io.Reader) (*models.SignatureReport, error) {
	f.hit("Validate")
	data, _ := io.ReadAll(r)
	if f.ValidateFn == nil {
		return &models.SignatureReport{IsValid: true, SignerName: "server"}, nil
	}
	return f.ValidateFn(name, data)
}

var _ client.Client = (*fakeClient)(nil)

// makeToken builds an unsigned three-segment token; exp 0 omits the claim.
func makeToken(exp int64) string {
	enc := base64.RawURLEncoding
	claims := map[string]any{"sub": "student@itb.edu.ec"}
	if exp != 0 {
		claims["exp"] = exp
	}
	payload, _ := json.Marshal(claims)
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

type env struct {
	db      *sql.DB
	client  *fakeClient
	session *session.Manager
	blobs   *blobstore.FSStore
	out     string
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "evadocs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	blobs, err := blobstore.NewFSStore(t.TempDir())
	require.NoError(t, err)

	return &env{
		db:      db,
		client:  newFakeClient(),
		session: session.NewManager(metadata.NewSQLiteRepository(db)),
		blobs:   blobs,
		out:     t.TempDir(),
	}
}

func (e *env) login(t *testing.T) {
	t.Helper()
	exp := time.Now().Add(time.Hour).Unix()
	require.NoError(t, e.session.Save(context.Background(), makeToken(exp), models.User{Email: "student@itb.edu.ec", Role: models.RoleUser}))
}

func (e *env) loginExpired(t *testing.T) {
	t.Helper()
	exp := time.Now().Add(-time.Hour).Unix()
	require.NoError(t, e.session.Save(context.Background(), makeToken(exp), models.User{Email: "student@itb.edu.ec"}))
}
