package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/michaelberns/wtt/models"
)

const maxUploadSize = 50 << 20

// UploadHandler обрабатывает POST /upload: multipart-форма с полями
// images (несколько файлов) и video (один файл). Файлы сохраняются в
// UploadDir, в ответе пути вида /uploads/<имя>.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		http.Error(w, "Failed to prepare upload directory", http.StatusInternalServerError)
		return
	}

	result := models.UploadResult{Images: []string{}}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			path, err := h.saveUpload(fh)
			if err != nil {
				http.Error(w, "Failed to save file", http.StatusInternalServerError)
				return
			}
			result.Images = append(result.Images, path)
		}
		if files := r.MultipartForm.File["video"]; len(files) > 0 {
			path, err := h.saveUpload(files[0])
			if err != nil {
				http.Error(w, "Failed to save file", http.StatusInternalServerError)
				return
			}
			result.Video = path
		}
	}

	writeJSON(w, result)
}

// saveUpload сохраняет один файл под случайным именем, расширение
// берётся из исходного имени
func (h *Handler) saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(h.UploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return "/uploads/" + name, nil
}
