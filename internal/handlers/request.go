package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ecotrack/backend/internal/services"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadSize = 5 << 20
	// room for the form fields around the file
	maxMultipartBody = maxUploadSize + 1<<20
)

var (
	allowedImageExt  = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}
	allowedImageMIME = map[string]bool{"image/jpeg": true, "image/png": true, "image/gif": true}
)

// decodeJSON reads exactly one JSON object into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return services.Validation("Invalid request body", nil)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return services.Validation("Request body must only contain a single JSON object", nil)
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.Validation("File size exceeds 5MB", nil)
		}
		return services.Validation("Invalid multipart form", nil)
	}
	return nil
}

// formString returns nil when the field was not sent at all.
func formString(r *http.Request, field string) *string {
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func formValue(r *http.Request, field string) string {
	if v := formString(r, field); v != nil {
		return *v
	}
	return ""
}

func formFloat(r *http.Request, field string) (*float64, error) {
	v := formString(r, field)
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return nil, services.Validation(field+" must be a number", nil)
	}
	return &f, nil
}

func formInt(r *http.Request, field string) (*int, error) {
	v := formString(r, field)
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		return nil, services.Validation(field+" must be a whole number", nil)
	}
	return &n, nil
}

// formImage reads an optional image file. Oversized files and anything that
// is not a jpeg, png or gif by both extension and content are rejected.
func formImage(r *http.Request, field string) (*services.Upload, error) {
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return readImage(files[0])
}

func readImage(fh *multipart.FileHeader) (*services.Upload, error) {
	if fh.Size > maxUploadSize {
		return nil, services.Validation("File size exceeds 5MB", nil)
	}
	if !allowedImageExt[strings.ToLower(filepath.Ext(fh.Filename))] {
		return nil, services.Validation("Images only! (jpeg, jpg, png, gif)", nil)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, services.Internal("failed to read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		return nil, services.Internal("failed to read upload", err)
	}
	if len(data) > maxUploadSize {
		return nil, services.Validation("File size exceeds 5MB", nil)
	}

	contentType := http.DetectContentType(data)
	if !allowedImageMIME[contentType] {
		return nil, services.Validation("Images only! (jpeg, jpg, png, gif)", nil)
	}

	return &services.Upload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}
