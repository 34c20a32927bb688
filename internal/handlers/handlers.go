package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Handler оборачивает Storage для доступа к данным
type Handler struct {
	Store StorageInterface
	// UploadDir задаёт каталог для загруженных файлов
	UploadDir string
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface) *Handler {
	return &Handler{Store: store, UploadDir: "uploads"}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// actorID читает инициатора запроса из заголовка X-User-Id
func actorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
