package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/blobstore"
	"github.com/dmitrijs2005/evadocs/internal/client/client"
	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/repositories/history"
	"github.com/dmitrijs2005/evadocs/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/evadocs/internal/client/session"
	"github.com/dmitrijs2005/evadocs/internal/client/view"
	"github.com/dmitrijs2005/evadocs/internal/common"
	"github.com/dmitrijs2005/evadocs/internal/dbx"
	"github.com/dmitrijs2005/evadocs/internal/filex"
	"github.com/dmitrijs2005/evadocs/internal/logging"
)

// DefaultHistoryLimit caps the local conversion history.
const DefaultHistoryLimit = 30

const convertedWithAPI = "api"

// ConvertResult describes a finished conversion.
type ConvertResult struct {
	// Path is where the PDF was written, empty when the backend answered
	// with document metadata only.
	Path    string
	PDFName string
	Size    int64

	// Saved is true when the document was stored in the user's account.
	Saved    bool
	Document *models.Document
	Record   *models.ConversionRecord

	// StaleSession reports that an expired token was found and the
	// conversion ran anonymously.
	StaleSession bool
}

// DocumentService converts documents and manages both the remote document
// list and the local anonymous history.
type DocumentService struct {
	client  client.Client
	db      *sql.DB
	session *session.Manager
	blobs   blobstore.Store
	logger  logging.Logger

	outputDir    string
	historyLimit int
	ids          *idSource
	now          func() time.Time
}

// DocumentOption configures a DocumentService.
type DocumentOption func(*DocumentService)

func WithOutputDir(dir string) DocumentOption {
	return func(s *DocumentService) { s.outputDir = dir }
}

func WithHistoryLimit(n int) DocumentOption {
	return func(s *DocumentService) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

func WithDocumentLogger(l logging.Logger) DocumentOption {
	return func(s *DocumentService) { s.logger = l }
}

func WithDocumentClock(now func() time.Time) DocumentOption {
	return func(s *DocumentService) { s.now = now }
}

func NewDocumentService(c client.Client, db *sql.DB, m *session.Manager, blobs blobstore.Store, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		client:       c,
		db:           db,
		session:      m,
		blobs:        blobs,
		logger:       logging.Discard(),
		outputDir:    ".",
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.ids = &idSource{now: s.now}
	return s
}

func (s *DocumentService) historyRepo(db dbx.DBTX) history.Repository {
	return history.NewSQLiteRepository(db)
}

func (s *DocumentService) uploadsRepo(db dbx.DBTX) uploads.Repository {
	return uploads.NewSQLiteRepository(db)
}

// Convert sends the document at path to the backend. With a valid session
// it is uploaded to the account, as a new version of parentID when
// non-zero; otherwise it is converted anonymously and kept in the local
// history. The resulting PDF is written to the output directory.
func (s *DocumentService) Convert(ctx context.Context, path string, parentID int64) (*ConvertResult, error) {
	fi, err := ValidateUpload(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := fi.Name()

	if s.session.IsValid(ctx) {
		return s.upload(ctx, name, data, parentID)
	}

	stale := false
	if _, err := s.session.Token(ctx); err == nil {
		stale = true
		s.logger.Warn(ctx, "expired session, converting without saving to account")
	}

	res, err := s.convertAnonymously(ctx, name, data)
	if err != nil {
		return nil, err
	}
	res.StaleSession = stale
	return res, nil
}

func (s *DocumentService) upload(ctx context.Context, name string, data []byte, parentID int64) (*ConvertResult, error) {
	up, err := s.client.Upload(ctx, name, bytes.NewReader(data), parentID)
	if errors.Is(err, client.ErrUnauthorized) {
		return nil, expireSession(ctx, s.session, s.logger, err)
	}
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	res := &ConvertResult{Saved: true, Document: up.Document, PDFName: models.PDFNameFor(name)}
	if up.PDF != nil {
		p, err := filex.WriteUnique(s.outputDir, res.PDFName, up.PDF.Data)
		if err != nil {
			return nil, fmt.Errorf("write pdf: %w", err)
		}
		res.Path = p
		res.Size = int64(len(up.PDF.Data))
	}
	s.logger.Info(ctx, "document uploaded", "name", name, "parent_id", parentID)
	return res, nil
}

func (s *DocumentService) convertAnonymously(ctx context.Context, name string, data []byte) (*ConvertResult, error) {
	pdf, err := s.client.Convert(ctx, name, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	pdfName := models.PDFNameFor(name)
	path, err := filex.WriteUnique(s.outputDir, pdfName, pdf.Data)
	if err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	rec, err := s.remember(ctx, name, int64(len(data)), pdfName, pdf.Data)
	if err != nil {
		// PDF is already written, history is best effort
		s.logger.Warn(ctx, "local history not updated", "error", err)
	}

	return &ConvertResult{
		Path:    path,
		PDFName: pdfName,
		Size:    int64(len(pdf.Data)),
		Record:  rec,
	}, nil
}

// remember stores the PDF as a blob and records the conversion together
// with its uploaded-file entry. Blobs of records pushed out of the capped
// history are released afterwards.
func (s *DocumentService) remember(ctx context.Context, name string, size int64, pdfName string, pdf []byte) (*models.ConversionRecord, error) {
	key, err := s.blobs.Put(ctx, pdfName, pdf)
	if err != nil {
		return nil, fmt.Errorf("store pdf: %w", err)
	}

	now := s.now()
	rec := models.ConversionRecord{
		ID:            s.ids.next(),
		OriginalName:  name,
		OriginalType:  strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")),
		OriginalSize:  size,
		PDFName:       pdfName,
		PDFSize:       int64(len(pdf)),
		PDFRef:        key,
		CreatedAt:     now,
		ConvertedWith: convertedWithAPI,
	}
	up := models.UploadedFile{
		ID:        s.ids.next(),
		Name:      name,
		Size:      size,
		Type:      models.FileKind(name),
		MimeType:  mime.TypeByExtension(filepath.Ext(name)),
		CreatedAt: now,
	}

	var evicted []models.ConversionRecord
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if evicted, err = s.historyRepo(tx).Add(ctx, rec, s.historyLimit); err != nil {
			return err
		}
		return s.uploadsRepo(tx).Add(ctx, up)
	})
	if err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil && !errors.Is(derr, blobstore.ErrNotFound) {
			s.logger.Warn(ctx, "orphaned blob", "key", key, "error", derr)
		}
		return nil, err
	}

	for _, old := range evicted {
		s.releaseBlob(ctx, old)
	}
	return &rec, nil
}

func (s *DocumentService) releaseBlob(ctx context.Context, rec models.ConversionRecord) {
	if rec.PDFRef == "" {
		return
	}
	if err := s.blobs.Delete(ctx, rec.PDFRef); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		s.logger.Warn(ctx, "release blob", "id", rec.ID, "key", rec.PDFRef, "error", err)
	}
}

// Documents lists the documents visible to the signed-in user.
func (s *DocumentService) Documents(ctx context.Context) ([]models.Document, error) {
	if !s.session.IsValid(ctx) {
		return nil, common.ErrNotAuthenticated
	}
	docs, err := s.client.MyDocuments(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		return nil, expireSession(ctx, s.session, s.logger, err)
	}
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Reconciled merges the local history with the remote documents. Remote
// failures other than an expired session degrade to the local view.
func (s *DocumentService) Reconciled(ctx context.Context) (view.Reconciled, error) {
	local, err := s.LocalHistory(ctx)
	if err != nil {
		return view.Reconciled{}, err
	}
	if !s.session.IsValid(ctx) {
		return view.Reconcile(local, nil), nil
	}

	remote, err := s.Documents(ctx)
	switch {
	case errors.Is(err, common.ErrSessionExpired):
		return view.Reconciled{}, err
	case err != nil:
		s.logger.Warn(ctx, "remote documents unavailable", "error", err)
		remote = nil
	}
	return view.Reconcile(local, remote), nil
}

// Download fetches a document version into the output directory and
// returns the written path.
func (s *DocumentService) Download(ctx context.Context, versionID int64) (string, error) {
	if !s.session.IsValid(ctx) {
		return "", common.ErrNotAuthenticated
	}
	f, err := s.client.Download(ctx, versionID)
	if errors.Is(err, client.ErrUnauthorized) {
		return "", expireSession(ctx, s.session, s.logger, err)
	}
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	p, err := filex.WriteUnique(s.outputDir, f.Name, f.Data)
	if err != nil {
		return "", fmt.Errorf("write download: %w", err)
	}
	return p, nil
}

func (s *DocumentService) Delete(ctx context.Context, docID int64) error {
	if !s.session.IsValid(ctx) {
		return common.ErrNotAuthenticated
	}
	err := s.client.DeleteDocument(ctx, docID)
	if errors.Is(err, client.ErrUnauthorized) {
		return expireSession(ctx, s.session, s.logger, err)
	}
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Share grants level on docID to another institutional account. The
// address and level are checked before any request is made.
func (s *DocumentService) Share(ctx context.Context, docID int64, email, level string) (*models.Permission, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if !models.ValidPermissionLevel(level) {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidPermission, level)
	}
	if !s.session.IsValid(ctx) {
		return nil, common.ErrNotAuthenticated
	}
	p, err := s.client.Share(ctx, docID, email, level)
	if errors.Is(err, client.ErrUnauthorized) {
		return nil, expireSession(ctx, s.session, s.logger, err)
	}
	if err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}
	return p, nil
}

// LocalHistory lists local conversions, most recent first.
func (s *DocumentService) LocalHistory(ctx context.Context) ([]models.ConversionRecord, error) {
	recs, err := s.historyRepo(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("local history: %w", err)
	}
	return recs, nil
}

// Uploads lists the files submitted while signed out, most recent first.
func (s *DocumentService) Uploads(ctx context.Context) ([]models.UploadedFile, error) {
	files, err := s.uploadsRepo(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("uploaded files: %w", err)
	}
	return files, nil
}

// DeleteLocal removes one local conversion and its stored PDF.
func (s *DocumentService) DeleteLocal(ctx context.Context, id int64) error {
	repo := s.historyRepo(s.db)
	rec, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	s.releaseBlob(ctx, *rec)
	return nil
}

// ClearLocal drops the local history, the uploaded-file bookkeeping and
// every stored PDF.
func (s *DocumentService) ClearLocal(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.historyRepo(tx).Clear(ctx); err != nil {
			return err
		}
		return s.uploadsRepo(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("clear local history: %w", err)
	}
	if err := s.blobs.Clear(ctx); err != nil {
		return fmt.Errorf("clear blobs: %w", err)
	}
	return nil
}

// Wipe implements session.Wiper.
func (s *DocumentService) Wipe(ctx context.Context) error {
	return s.ClearLocal(ctx)
}

// ExportLocal writes the stored PDF of a local conversion to the output
// directory.
func (s *DocumentService) ExportLocal(ctx context.Context, id int64) (string, error) {
	rec, err := s.historyRepo(s.db).Get(ctx, id)
	if err != nil {
		return "", err
	}
	data, err := s.blobs.Get(ctx, rec.PDFRef)
	if err != nil {
		return "", fmt.Errorf("read stored pdf: %w", err)
	}
	return filex.WriteUnique(s.outputDir, rec.PDFName, data)
}

var _ session.Wiper = (*DocumentService)(nil)
