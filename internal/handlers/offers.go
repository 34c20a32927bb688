package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/michaelberns/wtt/models"
)

// GetOffersHandler обрабатывает GET /jobs/:id/offers
func (h *Handler) GetOffersHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	if _, err := h.Store.GetJob(r.Context(), jobID); err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	offers, err := h.Store.GetOffersForJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Failed to get offers", http.StatusInternalServerError)
		return
	}

	writeJSON(w, offers)
}

// CreateOfferHandler обрабатывает POST /jobs/:id/offers
func (h *Handler) CreateOfferHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		UserID        string  `json:"userId"`
		ProposedPrice float64 `json:"proposedPrice"`
		Message       string  `json:"message"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateOfferRequest(input.UserID, input.ProposedPrice); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, err := h.Store.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	user, err := h.Store.GetUser(r.Context(), input.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}

	// Предложения подают только исполнители, и не на своё задание
	if user.Role != models.RoleLabour {
		http.Error(w, "Only labour users may submit offers", http.StatusForbidden)
		return
	}
	if job.CreatedBy == user.ID {
		http.Error(w, "Cannot submit an offer on own job", http.StatusForbidden)
		return
	}
	if job.Status != models.JobOpen {
		http.Error(w, "Job is not open", http.StatusBadRequest)
		return
	}

	offer := models.Offer{
		JobID:         jobID,
		UserID:        user.ID,
		ProposedPrice: input.ProposedPrice,
		Message:       input.Message,
		Status:        models.OfferPending,
	}
	if err := h.Store.CreateOffer(r.Context(), &offer); err != nil {
		http.Error(w, "Failed to create offer", http.StatusInternalServerError)
		return
	}

	h.notify(r, job.CreatedBy, "New offer on job: "+job.Title, job.ID, offer.ID)

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, offer)
}

// validateOfferRequest проверяет необходимые поля предложения
func validateOfferRequest(userID string, price float64) error {
	if userID == "" {
		return errors.New("userId is required")
	}
	if price < 0 {
		return errors.New("proposedPrice must not be negative")
	}
	return nil
}

// AcceptOfferHandler обрабатывает POST /offers/:id/accept. Создатель
// задания принимает предложение: задание резервируется за исполнителем,
// остальные ожидающие предложения отклоняются.
func (h *Handler) AcceptOfferHandler(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "offerId")
	actor := actorID(r)
	if actor == "" {
		http.Error(w, "Missing X-User-Id header", http.StatusUnauthorized)
		return
	}

	offer, err := h.Store.GetOffer(r.Context(), offerID)
	if err != nil {
		http.Error(w, "Offer not found", http.StatusNotFound)
		return
	}

	job, err := h.Store.GetJob(r.Context(), offer.JobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	if job.CreatedBy != actor {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if job.Status != models.JobOpen {
		http.Error(w, "Job is not open", http.StatusBadRequest)
		return
	}
	if offer.Status != models.OfferPending {
		http.Error(w, "Offer is not pending", http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateOfferStatus(r.Context(), offer.ID, models.OfferAccepted); err != nil {
		http.Error(w, "Failed to update offer", http.StatusInternalServerError)
		return
	}
	if err := h.Store.RejectPendingOffers(r.Context(), job.ID, offer.ID); err != nil {
		http.Error(w, "Failed to reject other offers", http.StatusInternalServerError)
		return
	}

	job.Status = models.JobReserved
	job.AcceptedBy = offer.UserID
	if err := h.Store.UpdateJob(r.Context(), job); err != nil {
		http.Error(w, "Failed to update job", http.StatusInternalServerError)
		return
	}

	h.notify(r, offer.UserID, "Your offer was accepted for job: "+job.Title, job.ID, offer.ID)

	offer.Status = models.OfferAccepted
	writeJSON(w, offer)
}

// RejectOfferHandler обрабатывает POST /offers/:id/reject
func (h *Handler) RejectOfferHandler(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "offerId")
	actor := actorID(r)
	if actor == "" {
		http.Error(w, "Missing X-User-Id header", http.StatusUnauthorized)
		return
	}

	offer, err := h.Store.GetOffer(r.Context(), offerID)
	if err != nil {
		http.Error(w, "Offer not found", http.StatusNotFound)
		return
	}

	job, err := h.Store.GetJob(r.Context(), offer.JobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	if job.CreatedBy != actor {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if offer.Status != models.OfferPending {
		http.Error(w, "Offer is not pending", http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateOfferStatus(r.Context(), offer.ID, models.OfferRejected); err != nil {
		http.Error(w, "Failed to update offer", http.StatusInternalServerError)
		return
	}

	h.notify(r, offer.UserID, "Your offer was rejected for job: "+job.Title, job.ID, offer.ID)

	offer.Status = models.OfferRejected
	writeJSON(w, offer)
}
