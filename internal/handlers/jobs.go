package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/michaelberns/wtt/internal/filters"
	"github.com/michaelberns/wtt/models"
)

// GetJobsHandler возвращает список заданий с фильтрами
func (h *Handler) GetJobsHandler(w http.ResponseWriter, r *http.Request) {
	f, err := filters.Decode(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobs, err := h.Store.GetJobs(r.Context(), f)
	if err != nil {
		http.Error(w, "Failed to get jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, jobs)
}

// GetJobsForMapHandler возвращает задания с координатами для карты
func (h *Handler) GetJobsForMapHandler(w http.ResponseWriter, r *http.Request) {
	f, err := filters.Decode(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobs, err := h.Store.GetJobsForMap(r.Context(), f)
	if err != nil {
		http.Error(w, "Failed to get jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, jobs)
}

// GetJobHandler обрабатывает GET /jobs/:id
func (h *Handler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, job)
}

// CreateJobHandler обрабатывает POST /jobs
func (h *Handler) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Location    string   `json:"location"`
		Budget      float64  `json:"budget"`
		Images      []string `json:"images"`
		Video       string   `json:"video"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		CreatedBy   string   `json:"createdBy"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateJobRequest(input.Title, input.Description, input.Budget, input.CreatedBy); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	creator, err := h.Store.GetUser(r.Context(), input.CreatedBy)
	if err != nil {
		http.Error(w, "Creator not found", http.StatusUnauthorized)
		return
	}
	if creator.Role != models.RoleClient {
		http.Error(w, "Only clients may post jobs", http.StatusForbidden)
		return
	}

	if input.Images == nil {
		input.Images = []string{}
	}

	// Статус при создании всегда open
	job := models.Job{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Budget:      input.Budget,
		Images:      input.Images,
		Video:       input.Video,
		Status:      models.JobOpen,
		CreatedBy:   input.CreatedBy,
	}
	if err := h.Store.CreateJob(r.Context(), &job); err != nil {
		http.Error(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, job)
}

// validateJobRequest проверяет необходимые поля задания
func validateJobRequest(title, description string, budget float64, createdBy string) error {
	if title == "" || len(title) > 100 {
		return errors.New("title is required and max length 100")
	}
	if description == "" || len(description) > 2000 {
		return errors.New("description is required and max length 2000")
	}
	if budget < 0 {
		return errors.New("budget must not be negative")
	}
	if createdBy == "" {
		return errors.New("createdBy is required")
	}
	return nil
}

// UpdateJobHandler обрабатывает PUT /jobs/:id; доступно только создателю
func (h *Handler) UpdateJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	actor := actorID(r)
	if actor == "" {
		http.Error(w, "Missing X-User-Id header", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Location    *string  `json:"location"`
		Budget      *float64 `json:"budget"`
		Images      []string `json:"images"`
		Video       *string  `json:"video"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	// Проверяем, что инициатор является создателем задания
	if job.CreatedBy != actor {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Обновляем поля, если они переданы
	if input.Title != nil {
		if len(*input.Title) == 0 || len(*input.Title) > 100 {
			http.Error(w, "Invalid title length", http.StatusBadRequest)
			return
		}
		job.Title = *input.Title
	}
	if input.Description != nil {
		if len(*input.Description) == 0 || len(*input.Description) > 2000 {
			http.Error(w, "Invalid description length", http.StatusBadRequest)
			return
		}
		job.Description = *input.Description
	}
	if input.Location != nil {
		job.Location = *input.Location
	}
	if input.Budget != nil {
		if *input.Budget < 0 {
			http.Error(w, "Budget must not be negative", http.StatusBadRequest)
			return
		}
		job.Budget = *input.Budget
	}
	if input.Images != nil {
		job.Images = input.Images
	}
	if input.Video != nil {
		job.Video = *input.Video
	}
	if input.Latitude != nil {
		job.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		job.Longitude = input.Longitude
	}

	if err := h.Store.UpdateJob(r.Context(), job); err != nil {
		http.Error(w, "Failed to update job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, job)
}

// DeleteJobHandler обрабатывает DELETE /jobs/:id; доступно только создателю
func (h *Handler) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	actor := actorID(r)
	if actor == "" {
		http.Error(w, "Missing X-User-Id header", http.StatusUnauthorized)
		return
	}

	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if job.CreatedBy != actor {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Store.DeleteJob(r.Context(), jobID); err != nil {
		http.Error(w, "Failed to delete job", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestCloseHandler обрабатывает POST /jobs/:id/request-close.
// Завершение запрашивает принятый исполнитель зарезервированного задания.
func (h *Handler) RequestCloseHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	actor := actorID(r)
	if actor == "" {
		http.Error(w, "Missing X-User-Id header", http.StatusUnauthorized)
		return
	}

	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	if job.Status != models.JobReserved {
		http.Error(w, "Job is not reserved", http.StatusBadRequest)
		return
	}
	if job.AcceptedBy != actor {
		http.Error(w, "Only the accepted worker may request close", http.StatusForbidden)
		return
	}
	if job.CloseRequestedBy == actor {
		http.Error(w, "Close already requested", http.StatusBadRequest)
		return
	}

	job.CloseRequestedBy = actor
	if err := h.Store.UpdateJob(r.Context(), job); err != nil {
		http.Error(w, "Failed to update job", http.StatusInternalServerError)
		return
	}

	h.notify(r, job.CreatedBy, "Worker requested to close job: "+job.Title, job.ID, "")

	writeJSON(w, job)
}

// ApproveCloseHandler обрабатывает POST /jobs/:id/close. Создатель
// закрывает задание; запрос на завершение не обязателен.
func (h *Handler) ApproveCloseHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	actor := actorID(r)
	if actor == "" {
		http.Error(w, "Missing X-User-Id header", http.StatusUnauthorized)
		return
	}

	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	if job.CreatedBy != actor {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if job.Status == models.JobClosed {
		http.Error(w, "Job is already closed", http.StatusBadRequest)
		return
	}
	if job.Status != models.JobReserved {
		http.Error(w, "Job is not reserved", http.StatusBadRequest)
		return
	}

	worker := job.AcceptedBy
	job.Status = models.JobClosed
	job.CloseRequestedBy = ""
	if err := h.Store.UpdateJob(r.Context(), job); err != nil {
		http.Error(w, "Failed to update job", http.StatusInternalServerError)
		return
	}

	if worker != "" {
		h.notify(r, worker, "Job closed: "+job.Title, job.ID, "")
	}

	writeJSON(w, job)
}

// RejectCloseHandler обрабатывает POST /jobs/:id/reject-close. Создатель
// отклоняет запрос на завершение, задание остаётся зарезервированным.
func (h *Handler) RejectCloseHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	actor := actorID(r)
	if actor == "" {
		http.Error(w, "Missing X-User-Id header", http.StatusUnauthorized)
		return
	}

	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	if job.CreatedBy != actor {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if job.Status != models.JobReserved {
		http.Error(w, "Job is not reserved", http.StatusBadRequest)
		return
	}
	if job.CloseRequestedBy == "" {
		http.Error(w, "No close request pending", http.StatusBadRequest)
		return
	}

	worker := job.CloseRequestedBy
	job.CloseRequestedBy = ""
	if err := h.Store.UpdateJob(r.Context(), job); err != nil {
		http.Error(w, "Failed to update job", http.StatusInternalServerError)
		return
	}

	h.notify(r, worker, "Close request rejected for job: "+job.Title, job.ID, "")

	writeJSON(w, job)
}

// notify создаёт уведомление; ошибка не прерывает основную операцию
func (h *Handler) notify(r *http.Request, userID, message, jobID, offerID string) {
	n := models.Notification{UserID: userID, Message: message, JobID: jobID, OfferID: offerID}
	_ = h.Store.CreateNotification(r.Context(), &n)
}
