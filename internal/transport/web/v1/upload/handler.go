package upload

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/transport/web/logx"
	"github.com/EgorLis/infdot-upload/internal/transport/web/mw"
	v1 "github.com/EgorLis/infdot-upload/internal/transport/web/v1"
	core "github.com/EgorLis/infdot-upload/internal/upload"
)

const (
	MsgTooLarge  = "File is too large."
	MsgMalformed = "Malformed upload request."

	// сколько multipart держим в памяти, остальное: во временных файлах
	maxMemory = 8 << 20
)

type Uploader interface {
	Upload(ctx context.Context, req core.Request) (core.Outcome, error)
}

type Handler struct {
	Log      zerolog.Logger
	Service  Uploader
	MaxBytes int64
}

// Upload godoc
// @Summary     Upload a file into a project version
// @Description Принимает один файл в multipart/form-data. Аутентификация по api_key или user+password.
// @Description Ответ всегда {"errorMessage": null | "..."}; ошибки проверки приходят со статусом 200.
// @Tags        upload
// @Accept      multipart/form-data
// @Produce     json
// @Param       api_key     formData  string  false  "API key"
// @Param       user        formData  string  false  "Логин (если нет api_key)"
// @Param       password    formData  string  false  "Пароль"
// @Param       project     formData  string  true   "Идентификатор проекта"
// @Param       version_id  formData  string  true   "Идентификатор версии"
// @Param       file        formData  file    true   "Файл"
// @Success     200  {object}  domain.UploadResponse
// @Failure     400  {object}  domain.UploadResponse  "malformed request"
// @Failure     413  {object}  domain.UploadResponse  "too large"
// @Failure     500  {object}  domain.UploadResponse  "internal error"
// @Router      /v1/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "upload.upload"
	reqID := mw.RequestIDFromCtx(r.Context())

	if h.MaxBytes > 0 {
		if r.ContentLength > h.MaxBytes {
			logx.Warn(h.Log, reqID, op, "body too large", "content_length", r.ContentLength)
			v1.WriteUploadError(w, r, http.StatusRequestEntityTooLarge, MsgTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}

	if err := parseForm(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logx.Warn(h.Log, reqID, op, "body too large", "limit", tooLarge.Limit)
			v1.WriteUploadError(w, r, http.StatusRequestEntityTooLarge, MsgTooLarge)
			return
		}
		logx.Error(h.Log, reqID, op, "parse form", err)
		v1.WriteUploadError(w, r, http.StatusBadRequest, MsgMalformed)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, err := readFile(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "read file", err)
		v1.WriteUploadError(w, r, http.StatusBadRequest, MsgMalformed)
		return
	}

	req := core.Request{
		APIKey:    v1.Param(r, "api_key"),
		User:      v1.Param(r, "user"),
		Password:  v1.Param(r, "password"),
		Project:   v1.Param(r, "project"),
		VersionID: v1.Param(r, "version_id"),
		File:      file,
	}

	out, err := h.Service.Upload(r.Context(), req)
	if err != nil {
		logx.Error(h.Log, reqID, op, "upload failed", err, "project", req.Project)
		v1.WriteUploadError(w, r, http.StatusInternalServerError, v1.MsgInternal)
		return
	}

	if out.OK() {
		if a := out.Stored; a != nil {
			logx.Info(h.Log, reqID, op, "stored", "attachment_id", a.ID.String(), "filename", a.Filename)
		}
	} else {
		logx.Info(h.Log, reqID, op, "rejected", "errors", out.Errors)
	}
	v1.WriteUpload(w, r, http.StatusOK, out.Response())
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

// readFile: nil, nil: файла в запросе нет
func readFile(r *http.Request) (*core.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &core.File{
		Name:        header.Filename,
		ContentType: contentType(header, content),
		Content:     content,
	}, nil
}

// Тип из заголовка части; если клиент его не знает: определяем по содержимому.
func contentType(h *multipart.FileHeader, content []byte) string {
	ct := h.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return mimetype.Detect(content).String()
}
