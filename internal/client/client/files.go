package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
)

// Convert sends a document to the anonymous /convert endpoint and returns
// the resulting PDF. The request is bounded by the convert timeout.
func (c *HTTPClient) Convert(ctx context.Context, name string, r io.Reader) (*File, error) {
	body, ct, err := multipartBody(nil, formFile{field: "file", name: name, r: r})
	if err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, c.convertTimeout)
	defer cancel()

	req, err := c.newRequest(tctx, http.MethodPost, "/convert", body, ct)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, timeoutError(ctx, tctx, err)
	}
	defer resp.Body.Close()

	pdf, err := readPDF(resp, models.PDFNameFor(name))
	if err != nil {
		return nil, timeoutError(ctx, tctx, err)
	}
	return pdf, nil
}

// Upload stores a document (or a new version of parentID when non-zero)
// under the signed-in account. The backend may answer with the converted
// PDF or with the registered document as JSON.
func (c *HTTPClient) Upload(ctx context.Context, name string, r io.Reader, parentID int64) (*UploadResult, error) {
	body, ct, err := multipartBody(nil, formFile{field: "file", name: name, r: r})
	if err != nil {
		return nil, err
	}

	path := "/api/v1/files/upload"
	if parentID > 0 {
		path += "?" + url.Values{"parent_id": {strconv.FormatInt(parentID, 10)}}.Encode()
	}

	tctx, cancel := context.WithTimeout(ctx, c.convertTimeout)
	defer cancel()

	req, err := c.newRequest(tctx, http.MethodPost, path, body, ct)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, timeoutError(ctx, tctx, err)
	}
	defer resp.Body.Close()

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var doc models.Document
		if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
			return nil, timeoutError(ctx, tctx, fmt.Errorf("%w: %w", ErrBadResponse, err))
		}
		return &UploadResult{Document: &doc}, nil
	}

	pdf, err := readPDF(resp, models.PDFNameFor(name))
	if err != nil {
		return nil, timeoutError(ctx, tctx, err)
	}
	return &UploadResult{PDF: pdf}, nil
}

func readPDF(resp *http.Response, name string) (*File, error) {
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/pdf") {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrNotPDF
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPDF
	}
	return &File{Name: name, ContentType: ct, Data: data}, nil
}

// MyDocuments lists documents owned by or shared with the user, in server
// order.
func (c *HTTPClient) MyDocuments(ctx context.Context) ([]models.Document, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/files/my-documents", nil, "")
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	docs := []models.Document{}
	if err := decodeJSON(resp, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Download fetches a stored version. The file name comes from
// Content-Disposition, see FilenameFromHeaders.
func (c *HTTPClient) Download(ctx context.Context, versionID int64) (*File, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/files/download/%d", versionID), nil, "")
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &File{
		Name:        FilenameFromHeaders(resp.Header),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, docID int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/files/%d", docID), nil, "")
	if err != nil {
		return err
	}
	if err := c.authorize(ctx, req); err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Share grants level on docID to the account with the given e-mail. An
// unknown e-mail yields an *APIError wrapping ErrUserNotFound.
func (c *HTTPClient) Share(ctx context.Context, docID int64, email, level string) (*models.Permission, error) {
	body, err := jsonBody(map[string]string{"email": email, "permission_level": level})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/api/v1/files/%d/share", docID), body, "application/json")
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			apiErr.Err = ErrUserNotFound
		}
		return nil, err
	}

	var p models.Permission
	if err := decodeJSON(resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
