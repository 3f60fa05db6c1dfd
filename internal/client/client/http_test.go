package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/common"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", common.ErrNotAuthenticated
	}
	return string(s), nil
}

func newTestClient(t *testing.T, r http.Handler, token string, opts ...Option) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(srv.URL+"/", staticToken(token), opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writePDF(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = io.WriteString(w, body)
}

func TestNewHTTPClient_EmptyURL(t *testing.T) {
	_, err := NewHTTPClient("", nil)
	require.Error(t, err)
}

func TestLoginAndMe(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "student@itb.edu.ec", in["email"])
		assert.Equal(t, "secret1", in["password"])
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "token_type": "bearer"})
	})
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "student@itb.edu.ec", "role": "user", "is_active": true})
	})

	c := newTestClient(t, r, "tok")
	ctx := context.Background()

	token, err := c.Login(ctx, "student@itb.edu.ec", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: 7, Email: "student@itb.edu.ec", Role: "user"}, u)
}

func TestLogin_EmptyTokenIsBadResponse(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	c := newTestClient(t, r, "")

	_, err := c.Login(context.Background(), "a@itb.edu.ec", "x")
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestLogin_RejectedKeepsDetail(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
	})
	c := newTestClient(t, r, "")

	_, err := c.Login(context.Background(), "a@itb.edu.ec", "wrong1")
	require.ErrorIs(t, err, ErrUnauthorized)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Incorrect email or password", apiErr.Message)
}

func TestProtectedCall_NoTokenSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

	c := newTestClient(t, r, "")
	_, err := c.MyDocuments(context.Background())
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Zero(t, hits.Load())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{"401", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		}, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrUnauthorized)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
			assert.Equal(t, "Could not validate credentials", apiErr.Message)
		}},
		{"401 without body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrUnauthorized)
			assert.EqualError(t, err, "unauthorized")
		}},
		{"detail wins", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]string{"detail": "ya existe", "error": "x"})
		}, func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusConflict, apiErr.Status)
			assert.Equal(t, "ya existe", apiErr.Message)
		}},
		{"error field", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "conversion failed"})
		}, func(t *testing.T, err error) { assert.EqualError(t, err, "conversion failed") }},
		{"validation list", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "field required"}, {"msg": "too short"}}})
		}, func(t *testing.T, err error) { assert.EqualError(t, err, "field required; too short") }},
		{"json without fields", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"other": "x"})
		}, func(t *testing.T, err error) { assert.EqualError(t, err, "Error 502: Bad Gateway") }},
		{"raw text truncated", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, strings.Repeat("x", 300))
		}, func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Len(t, apiErr.Message, 200)
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}, func(t *testing.T, err error) { assert.EqualError(t, err, "Error 503: Service Unavailable") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/api/v1/files/my-documents", tt.handler)
			c := newTestClient(t, r, "tok")

			_, err := c.MyDocuments(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewHTTPClient(srv.URL, staticToken("tok"))
	require.NoError(t, err)

	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestConvert(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/convert", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "report.docx", hdr.Filename)
		b, _ := io.ReadAll(f)
		assert.Equal(t, "DOCX", string(b))
		writePDF(w, "%PDF-1.7")
	})
	c := newTestClient(t, r, "")

	pdf, err := c.Convert(context.Background(), "report.docx", strings.NewReader("DOCX"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", pdf.Name)
	assert.Equal(t, "%PDF-1.7", string(pdf.Data))
}

func TestConvert_RejectsBadPayloads(t *testing.T) {
	t.Run("not pdf", func(t *testing.T) {
		r := chi.NewRouter()
		r.Post("/convert", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, "<html>")
		})
		c := newTestClient(t, r, "")
		_, err := c.Convert(context.Background(), "a.doc", strings.NewReader("x"))
		require.ErrorIs(t, err, ErrNotPDF)
	})

	t.Run("empty pdf", func(t *testing.T) {
		r := chi.NewRouter()
		r.Post("/convert", func(w http.ResponseWriter, r *http.Request) { writePDF(w, "") })
		c := newTestClient(t, r, "")
		_, err := c.Convert(context.Background(), "a.doc", strings.NewReader("x"))
		require.ErrorIs(t, err, ErrEmptyPDF)
	})
}

func TestConvert_Timeout(t *testing.T) {
	release := make(chan struct{})
	r := chi.NewRouter()
	r.Post("/convert", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	c := newTestClient(t, r, "", WithConvertTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.Convert(context.Background(), "a.doc", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrTimeout)
}

func TestConvert_CallerCancelIsNotTimeout(t *testing.T) {
	release := make(chan struct{})
	r := chi.NewRouter()
	r.Post("/convert", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	c := newTestClient(t, r, "")
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.Convert(ctx, "a.doc", strings.NewReader("x"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTimeout)
}

func TestUpload(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/files/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if r.URL.Query().Get("parent_id") == "12" {
			writeJSON(w, http.StatusCreated, map[string]any{"id": 12, "name": "informe.docx", "is_owner": true,
				"latest_version": map[string]any{"id": 99, "version_number": "v2", "file_size": 10}})
			return
		}
		writePDF(w, "%PDF")
	})
	c := newTestClient(t, r, "tok")
	ctx := context.Background()

	res, err := c.Upload(ctx, "informe.docx", strings.NewReader("x"), 0)
	require.NoError(t, err)
	require.NotNil(t, res.PDF)
	assert.Nil(t, res.Document)
	assert.Equal(t, "informe.pdf", res.PDF.Name)

	res, err = c.Upload(ctx, "informe.docx", strings.NewReader("x"), 12)
	require.NoError(t, err)
	require.NotNil(t, res.Document)
	assert.Equal(t, int64(99), res.Document.LatestVersion.ID)
}

func TestMyDocuments(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/files/my-documents", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":1,"name":"a.pdf","user_id":1,"created_at":"2025-01-10T10:00:00","is_owner":true,"permission":"owner"},
			{"id":2,"name":"b.docx","user_id":2,"created_at":"2025-01-11T10:00:00Z","is_owner":false,"permission":"viewer"}
		]`)
	})
	c := newTestClient(t, r, "tok")

	docs, err := c.MyDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.True(t, docs[0].IsOwner)
	assert.Equal(t, "b.docx", docs[1].Name)
	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), docs[0].CreatedAt.Time)
}

func TestDownload_FilenameAndBody(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/files/download/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", chi.URLParam(r, "id"))
		w.Header().Set("Content-Disposition", `attachment; filename*=UTF-8''informe%20final.pdf`)
		writePDF(w, "PDF")
	})
	c := newTestClient(t, r, "tok")

	f, err := c.Download(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "informe final.pdf", f.Name)
	assert.Equal(t, "PDF", string(f.Data))
}

func TestDeleteDocument(t *testing.T) {
	var deleted atomic.Bool
	r := chi.NewRouter()
	r.Delete("/api/v1/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted.Store(chi.URLParam(r, "id") == "3")
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, r, "tok")

	require.NoError(t, c.DeleteDocument(context.Background(), 3))
	assert.True(t, deleted.Load())
}

func TestShare(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/files/{id}/share", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["email"] == "ghost@itb.edu.ec" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Usuario no encontrado"})
			return
		}
		assert.Equal(t, "editor", in["permission_level"])
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "user_id": 4, "document_id": 9, "permission_level": "editor", "created_at": "2025-01-10T10:00:00Z"})
	})
	c := newTestClient(t, r, "tok")
	ctx := context.Background()

	p, err := c.Share(ctx, 9, "peer@itb.edu.ec", "editor")
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.UserID)

	_, err = c.Share(ctx, 9, "ghost@itb.edu.ec", "viewer")
	require.ErrorIs(t, err, ErrUserNotFound)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Usuario no encontrado", apiErr.Message)
}

func TestSign(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/documents/sign", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "9", r.FormValue("document_id"))
		_, hdr, err := r.FormFile("p12_file")
		require.NoError(t, err)
		assert.Equal(t, "cert.p12", hdr.Filename)
		if r.FormValue("password") != "good" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 30, "document_id": 9, "version_number": "v2", "file_size": 10, "is_latest": true, "created_at": "2025-01-10T10:00:00Z"})
	})
	c := newTestClient(t, r, "tok")
	ctx := context.Background()

	v, err := c.Sign(ctx, 9, "cert.p12", strings.NewReader("P12"), "good")
	require.NoError(t, err)
	assert.Equal(t, "v2", v.VersionNumber)

	_, err = c.Sign(ctx, 9, "cert.p12", strings.NewReader("P12"), "bad")
	require.ErrorIs(t, err, ErrBadCertificate)
}

func TestValidate(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/documents/validate", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"is_valid": true, "signer_name": "ANA", "trusted": false, "timestamp": "2025-01-10T10:00:00Z"})
	})
	c := newTestClient(t, r, "tok")

	rep, err := c.Validate(context.Background(), "a.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, rep.IsValid)
	assert.Equal(t, "ANA", rep.SignerName)
	require.NotNil(t, rep.Timestamp)
}

func TestPasswordRecoveryAndReset(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/password-recovery", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "correo enviado"})
	})
	r.Post("/api/v1/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "reset-token-123", in["token"])
		assert.Equal(t, "newpassword", in["new_password"])
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "actualizada"})
	})
	c := newTestClient(t, r, "")
	ctx := context.Background()

	msg, err := c.RequestPasswordRecovery(ctx, "a@itb.edu.ec")
	require.NoError(t, err)
	assert.Equal(t, "correo enviado", msg)

	msg, err = c.ResetPassword(ctx, "reset-token-123", "newpassword")
	require.NoError(t, err)
	assert.Equal(t, "actualizada", msg)
}

func TestWipe_DropsCookies(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("sid"); err != nil {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "1", Path: "/"})
		}
	})
	c := newTestClient(t, r, "")
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	u, err := url.Parse(c.baseURL)
	require.NoError(t, err)
	require.Len(t, c.client().Jar.Cookies(u), 1)

	require.NoError(t, c.Wipe(ctx))
	assert.Empty(t, c.client().Jar.Cookies(u))
}

func TestAPIError_Unwrap(t *testing.T) {
	err := &APIError{Status: 404, Message: "no", Err: ErrUserNotFound}
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.Equal(t, "user not found: no", err.Error())
}
