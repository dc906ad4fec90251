package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
	"github.com/joseph-ayodele/paystubs/internal/core/ocr"
	"github.com/joseph-ayodele/paystubs/internal/export"
)

const codeRateLimited = "RATE_LIMITED"

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	opts, err := extractOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.proc.Process(r.Context(), data, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := json.Marshal(res)
	if err == nil {
		err = extract.ValidateJSON(body)
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("encode result: %w", err))
		return
	}
	writeRaw(w, http.StatusOK, "application/json", body)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	opts, err := extractOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if err := common.NewValidator().Field("format", format, common.OneOf("json", "xlsx")).Err(common.CodeInvalidInput); err != nil {
		s.writeError(w, r, err)
		return
	}

	docs, err := s.readBatch(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.proc.ProcessBatch(r.Context(), docs, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if strings.EqualFold(format, "xlsx") {
		b, err := export.BatchXLSX(entries)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="paystubs.xlsx"`)
		writeRaw(w, http.StatusOK, export.ContentType, b)
		return
	}

	for _, e := range entries {
		if e.Data == nil {
			continue
		}
		b, err := json.Marshal(e.Data)
		if err == nil {
			err = extract.ValidateJSON(b)
		}
		if err != nil {
			s.writeError(w, r, fmt.Errorf("encode result %s: %w", e.Filename, err))
			return
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

// extractOptions maps query parameters to per-call acquisition options.
func extractOptions(r *http.Request) ([]ocr.ExtractOption, error) {
	raw := r.URL.Query().Get("ocr")
	if raw == "" {
		return nil, nil
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, common.NewInvalidInputError("ocr must be true or false")
	}
	return []ocr.ExtractOption{ocr.WithOCR(enabled)}, nil
}

// readDocument accepts a multipart upload in field "file" or a raw body.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if isMultipart(r) {
		if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
			return nil, uploadError(err)
		}
		fh := firstFile(r.MultipartForm, "file")
		if fh == nil {
			return nil, common.NewInvalidInputError("no file provided")
		}
		return readPart(fh)
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, uploadError(err)
	}
	if len(data) == 0 {
		return nil, common.NewInvalidInputError("no file provided")
	}
	return data, nil
}

func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) ([]core.Document, error) {
	if !isMultipart(r) {
		return nil, common.NewInvalidInputError("batch requires a multipart upload with field files")
	}
	limit := s.opts.MaxUploadBytes * constants.MaxBatchDocuments
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		return nil, uploadError(err)
	}
	files := r.MultipartForm.File["files"]
	v := common.NewValidator().
		Field("files", len(files), common.MaxItems(constants.MaxBatchDocuments))
	if len(files) == 0 {
		v.Field("files", nil, common.Required)
	}
	if err := v.Err(common.CodeInvalidInput); err != nil {
		return nil, err
	}

	docs := make([]core.Document, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, core.Document{Filename: fh.Filename, Data: data})
	}
	return docs, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return common.NewInvalidInputError(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
	}
	return common.NewInvalidInputError(fmt.Sprintf("malformed upload: %v", err))
}

// writeError maps the error taxonomy to a status code and a JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	code := common.CodeOf(err)
	var app *common.AppError
	switch {
	case common.IsAcquisition(err):
		status, msg = http.StatusUnprocessableEntity, common.ErrAcquisition.Error()
	case common.IsValidation(err):
		status = http.StatusUnprocessableEntity
		if errors.As(err, &app) {
			msg = app.Message
		}
	case common.IsInvalidInput(err):
		status = http.StatusBadRequest
		if errors.As(err, &app) {
			msg = app.Message
		}
	}
	level := s.logger.Warn
	if status >= http.StatusInternalServerError {
		level = s.logger.Error
	}
	level("request failed",
		"request_id", common.RequestIDFromContext(r.Context()),
		"status", status,
		"code", code,
		"error", err,
	)
	writeJSONError(w, status, msg, code)
}

func writeJSONError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal error","code":"INTERNAL_ERROR"}`, http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, "application/json", b)
}

func writeRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
