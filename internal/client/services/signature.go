package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/client"
	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/session"
	"github.com/dmitrijs2005/evadocs/internal/common"
	"github.com/dmitrijs2005/evadocs/internal/logging"
	"github.com/dmitrijs2005/evadocs/internal/timex"
)

// Canned values produced in simulation mode.
const (
	SimulatedSignedVersion = "v1.1-signed"
	SimulatedSignerFile    = "ESTUDIANTE ITB - FIRMA ELECTRÓNICA"
	SimulatedSignerDemo    = "ROBERTO ALEXIS NEGRETE (SIMULACIÓN)"
	SimulatedIntegrityFile = "Documento no modificado tras la firma"
	SimulatedIntegrityDemo = "Documento íntegro (Simulado)"

	simulatedFailureMarker = "error"
	signStatusSuccess      = "success"
)

// SignatureService signs documents and validates signed PDFs, either
// against the backend or in simulation mode.
type SignatureService struct {
	client   client.Client
	session  *session.Manager
	logger   logging.Logger
	now      func() time.Time
	simulate atomic.Bool
}

func NewSignatureService(c client.Client, m *session.Manager, logger logging.Logger, simulate bool) *SignatureService {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &SignatureService{client: c, session: m, logger: logger, now: time.Now}
	s.simulate.Store(simulate)
	return s
}

func (s *SignatureService) SetSimulation(on bool) { s.simulate.Store(on) }

func (s *SignatureService) Simulation() bool { return s.simulate.Load() }

// Sign signs docID with the PKCS#12 certificate at p12Path. Simulation only
// needs a password and rejects any password containing "error".
func (s *SignatureService) Sign(ctx context.Context, docID int64, p12Path, password string) (*models.SignResult, error) {
	if s.Simulation() {
		return s.simulateSign(docID, password)
	}

	if p12Path == "" || password == "" {
		return nil, common.ErrMissingCertificate
	}
	if !s.session.IsValid(ctx) {
		return nil, common.ErrNotAuthenticated
	}
	p12, err := os.ReadFile(p12Path)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	defer common.WipeByteArray(p12)

	v, err := s.client.Sign(ctx, docID, filepath.Base(p12Path), bytes.NewReader(p12), password)
	if errors.Is(err, client.ErrUnauthorized) {
		return nil, expireSession(ctx, s.session, s.logger, err)
	}
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	s.logger.Info(ctx, "document signed", "document_id", docID, "version", v.VersionNumber)
	return &models.SignResult{Status: signStatusSuccess, Version: *v}, nil
}

func (s *SignatureService) simulateSign(docID int64, password string) (*models.SignResult, error) {
	if password == "" {
		return nil, common.ErrMissingPassword
	}
	if strings.Contains(strings.ToLower(password), simulatedFailureMarker) {
		return nil, fmt.Errorf("%w (simulated 400 Bad Request)", client.ErrBadCertificate)
	}
	return &models.SignResult{
		Status: signStatusSuccess,
		Version: models.Version{
			DocumentID:    docID,
			VersionNumber: SimulatedSignedVersion,
			IsLatest:      true,
			CreatedAt:     timex.Timestamp{Time: s.now()},
		},
	}, nil
}

// Validate checks the signatures of the PDF at path. In simulation mode an
// empty path yields the demo report.
func (s *SignatureService) Validate(ctx context.Context, path string) (*models.SignatureReport, error) {
	if s.Simulation() {
		return s.simulateValidate(path), nil
	}
	if path == "" {
		return nil, common.ErrNoFileSelected
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rep, err := s.client.Validate(ctx, filepath.Base(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return rep, nil
}

func (s *SignatureService) simulateValidate(path string) *models.SignatureReport {
	rep := &models.SignatureReport{
		IsValid:    true,
		SignerName: SimulatedSignerDemo,
		Timestamp:  timex.Timestamp{Time: s.now()},
		Trusted:    true,
		Integrity:  SimulatedIntegrityDemo,
	}
	if path != "" {
		rep.SignerName = SimulatedSignerFile
		rep.Integrity = SimulatedIntegrityFile
	}
	return rep
}
