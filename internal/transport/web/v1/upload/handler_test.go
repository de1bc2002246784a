package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/infdot-upload/internal/domain"
	core "github.com/EgorLis/infdot-upload/internal/upload"
)

type fakeUploader struct {
	got   *core.Request
	out   core.Outcome
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, req core.Request) (core.Outcome, error) {
	f.calls++
	f.got = &req
	return f.out, f.err
}

type part struct {
	name, filename, contentType string
	body                        []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *part) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+file.name+`"; filename="`+file.filename+`"`)
		if file.contentType != "" {
			h.Set("Content-Type", file.contentType)
		}
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(file.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, h *Handler, target string, body io.Reader, ct string) (*httptest.ResponseRecorder, domain.UploadResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, body)
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	var resp domain.UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestUpload_PassesFieldsAndFile(t *testing.T) {
	svc := &fakeUploader{out: core.Outcome{Stored: &domain.Attachment{ID: uuid.New(), Filename: "a.txt"}}}
	h := &Handler{Log: zerolog.Nop(), Service: svc, MaxBytes: 1 << 20}

	body, ct := multipartBody(t, map[string]string{
		"user":       "alice",
		"password":   " spaced pass ",
		"project":    "acme",
		"version_id": "v-1",
	}, &part{name: "file", filename: "a.txt", contentType: "text/plain", body: []byte("hello")})

	rec, resp := doUpload(t, h, "/v1/upload", body, ct)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Nil(t, resp.ErrorMessage)
	require.NotNil(t, svc.got)
	assert.Equal(t, "alice", svc.got.User)
	assert.Equal(t, " spaced pass ", svc.got.Password)
	assert.Equal(t, "acme", svc.got.Project)
	assert.Equal(t, "v-1", svc.got.VersionID)
	assert.Empty(t, svc.got.APIKey)
	require.NotNil(t, svc.got.File)
	assert.Equal(t, "a.txt", svc.got.File.Name)
	assert.Equal(t, "text/plain", svc.got.File.ContentType)
	assert.Equal(t, []byte("hello"), svc.got.File.Content)
}

func TestUpload_QueryParamsFallback(t *testing.T) {
	svc := &fakeUploader{out: core.Outcome{Stored: &domain.Attachment{}}}
	h := &Handler{Log: zerolog.Nop(), Service: svc}

	body, ct := multipartBody(t, map[string]string{"project": "from-form"},
		&part{name: "file", filename: "x.bin", body: []byte{1, 2, 3}})

	_, _ = doUpload(t, h, "/v1/upload?api_key=k-1&project=from-query&version_id=v-9", body, ct)

	require.NotNil(t, svc.got)
	assert.Equal(t, "k-1", svc.got.APIKey)
	assert.Equal(t, "from-form", svc.got.Project)
	assert.Equal(t, "v-9", svc.got.VersionID)
}

func TestUpload_NoFile(t *testing.T) {
	svc := &fakeUploader{out: core.Outcome{Errors: []string{core.MsgNoFile}}}
	h := &Handler{Log: zerolog.Nop(), Service: svc}

	body, ct := multipartBody(t, map[string]string{"api_key": "k"}, nil)
	rec, resp := doUpload(t, h, "/v1/upload", body, ct)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Nil(t, svc.got.File)
	require.NotNil(t, resp.ErrorMessage)
	assert.Equal(t, core.MsgNoFile, *resp.ErrorMessage)
}

func TestUpload_URLEncodedHasNoFile(t *testing.T) {
	svc := &fakeUploader{out: core.Outcome{Errors: []string{core.MsgNoFile}}}
	h := &Handler{Log: zerolog.Nop(), Service: svc}

	_, _ = doUpload(t, h, "/v1/upload", strings.NewReader("api_key=k&project=p"), "application/x-www-form-urlencoded")

	require.NotNil(t, svc.got)
	assert.Equal(t, "k", svc.got.APIKey)
	assert.Equal(t, "p", svc.got.Project)
	assert.Nil(t, svc.got.File)
}

func TestUpload_RejectionIs200WithJoinedMessages(t *testing.T) {
	svc := &fakeUploader{out: core.Outcome{Errors: []string{core.MsgNoProject, core.MsgNoVersion}}}
	h := &Handler{Log: zerolog.Nop(), Service: svc}

	body, ct := multipartBody(t, map[string]string{"api_key": "k"},
		&part{name: "file", filename: "a.txt", body: []byte("x")})
	rec, resp := doUpload(t, h, "/v1/upload", body, ct)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.ErrorMessage)
	assert.Equal(t, core.MsgNoProject+" "+core.MsgNoVersion, *resp.ErrorMessage)
}

func TestUpload_ServiceErrorIs500(t *testing.T) {
	svc := &fakeUploader{err: errors.New("credentials: connection refused")}
	h := &Handler{Log: zerolog.Nop(), Service: svc}

	body, ct := multipartBody(t, map[string]string{"api_key": "k"},
		&part{name: "file", filename: "a.txt", body: []byte("x")})
	rec, resp := doUpload(t, h, "/v1/upload", body, ct)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, resp.ErrorMessage)
	assert.Equal(t, "Internal server error.", *resp.ErrorMessage)
}

func TestUpload_TooLarge(t *testing.T) {
	svc := &fakeUploader{}
	h := &Handler{Log: zerolog.Nop(), Service: svc, MaxBytes: 64}

	body, ct := multipartBody(t, map[string]string{"api_key": "k"},
		&part{name: "file", filename: "big.bin", body: bytes.Repeat([]byte("x"), 1024)})
	rec, resp := doUpload(t, h, "/v1/upload", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.NotNil(t, resp.ErrorMessage)
	assert.Equal(t, MsgTooLarge, *resp.ErrorMessage)
	assert.Zero(t, svc.calls)
}

func TestUpload_MalformedMultipart(t *testing.T) {
	svc := &fakeUploader{}
	h := &Handler{Log: zerolog.Nop(), Service: svc}

	rec, resp := doUpload(t, h, "/v1/upload", strings.NewReader("garbage"), "multipart/form-data")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.ErrorMessage)
	assert.Equal(t, MsgMalformed, *resp.ErrorMessage)
	assert.Zero(t, svc.calls)
}

func TestContentType(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n")

	tests := []struct {
		name    string
		header  string
		content []byte
		want    string
	}{
		{"header wins", "image/png", pdf, "image/png"},
		{"octet-stream is sniffed", "application/octet-stream", pdf, "application/pdf"},
		{"missing is sniffed", "", pdf, "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fh := &multipart.FileHeader{Header: textproto.MIMEHeader{}}
			if tt.header != "" {
				fh.Header.Set("Content-Type", tt.header)
			}
			assert.Equal(t, tt.want, contentType(fh, tt.content))
		})
	}
}
