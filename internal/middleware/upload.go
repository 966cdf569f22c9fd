package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"github.com/google/uuid"
)

// multipartMemory is how much of a multipart body is held in memory
// before the rest spills to temp files.
const multipartMemory = 8 << 20

type uploadsKey struct{}

// UploadedFile is a form file saved to local disk
type UploadedFile struct {
	Field        string
	OriginalName string
	Path         string
	Size         int64
	ContentType  string
}

// UploadedFiles maps form field name to the first file sent under it
type UploadedFiles map[string]UploadedFile

// Path returns the local path for field, or "" when none was sent.
func (u UploadedFiles) Path(field string) string {
	return u[field].Path
}

// UploadedFilesFromContext returns the files stored by UploadFields.
func UploadedFilesFromContext(ctx context.Context) UploadedFiles {
	files, _ := ctx.Value(uploadsKey{}).(UploadedFiles)
	if files == nil {
		return UploadedFiles{}
	}
	return files
}

// UploadFields parses a multipart body of at most maxBytes, saves the first
// file of each named field under dir and exposes them through
// UploadedFilesFromContext. Text fields stay available on r.MultipartForm
// and r.FormValue. Saved files still on disk when the handler returns are
// removed.
func UploadFields(dir string, maxBytes int64, fields ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			err := r.ParseMultipartForm(multipartMemory)
			if errors.Is(err, http.ErrNotMultipart) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					utils.WriteError(w, utils.NewAPIError(http.StatusBadRequest, "Uploaded files are too large"))
					return
				}
				utils.WriteError(w, utils.NewAPIError(http.StatusBadRequest, "Invalid multipart form"))
				return
			}
			defer r.MultipartForm.RemoveAll()

			files := UploadedFiles{}
			defer func() {
				for _, f := range files {
					_ = os.Remove(f.Path)
				}
			}()

			for _, field := range fields {
				headers := r.MultipartForm.File[field]
				if len(headers) == 0 {
					continue
				}
				saved, err := saveUpload(dir, field, headers[0])
				if err != nil {
					utils.WriteError(w, utils.NewAPIError(http.StatusInternalServerError, "Failed to store uploaded file"))
					return
				}
				files[field] = saved
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), uploadsKey{}, files)))
		})
	}
}

func saveUpload(dir, field string, fh *multipart.FileHeader) (UploadedFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return UploadedFile{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return UploadedFile{}, err
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(fh.Filename)))
	path := filepath.Join(dir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return UploadedFile{}, err
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return UploadedFile{}, fmt.Errorf("save %s: %w", field, err)
	}

	return UploadedFile{
		Field:        field,
		OriginalName: fh.Filename,
		Path:         path,
		Size:         n,
		ContentType:  fh.Header.Get("Content-Type"),
	}, nil
}
