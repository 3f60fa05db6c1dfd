package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
)

// Client is the contract of the EVA REST backend as seen by the CLI.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*models.User, error)
	Register(ctx context.Context, email, password, role string) (*models.User, error)
	RequestPasswordRecovery(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)

	Convert(ctx context.Context, name string, r io.Reader) (*File, error)
	Upload(ctx context.Context, name string, r io.Reader, parentID int64) (*UploadResult, error)
	MyDocuments(ctx context.Context) ([]models.Document, error)
	Download(ctx context.Context, versionID int64) (*File, error)
	DeleteDocument(ctx context.Context, docID int64) error
	Share(ctx context.Context, docID int64, email, level string) (*models.Permission, error)

	Sign(ctx context.Context, docID int64, p12Name string, p12 io.Reader, password string) (*models.Version, error)
	Validate(ctx context.Context, name string, r io.Reader) (*models.SignatureReport, error)
}

// TokenSource yields the bearer token for protected calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// File is a binary payload returned by the backend.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadResult holds whatever the upload endpoint answered with: the
// registered document, the converted PDF, or both.
type UploadResult struct {
	Document *models.Document
	PDF      *File
}
