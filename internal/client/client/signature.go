package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
)

// Sign asks the backend to sign docID with a PKCS#12 certificate. A 400
// answer means the certificate or its password was rejected.
func (c *HTTPClient) Sign(ctx context.Context, docID int64, p12Name string, p12 io.Reader, password string) (*models.Version, error) {
	body, ct, err := multipartBody(
		map[string]string{"document_id": strconv.FormatInt(docID, 10), "password": password},
		formFile{field: "p12_file", name: p12Name, r: p12},
	)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/documents/sign", body, ct)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			apiErr.Err = ErrBadCertificate
		}
		return nil, err
	}

	var v models.Version
	if err := decodeJSON(resp, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate submits a PDF and returns the signature report.
func (c *HTTPClient) Validate(ctx context.Context, name string, r io.Reader) (*models.SignatureReport, error) {
	body, ct, err := multipartBody(nil, formFile{field: "file", name: name, r: r})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/documents/validate", body, ct)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rep models.SignatureReport
	if err := decodeJSON(resp, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
