package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/michaelberns/wtt/models"
)

// CreateUserHandler обрабатывает POST /users
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	// Ограничение размера тела запроса
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateUserRequest(input.Name, input.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	role, err := models.ParseRole(input.Role)
	if err != nil {
		http.Error(w, "role must be 'client' or 'labour'", http.StatusBadRequest)
		return
	}

	user := models.User{Name: input.Name, Email: input.Email, Role: role}
	if err := h.Store.CreateUser(r.Context(), &user); err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, user)
}

// validateUserRequest проверяет необходимые поля регистрации
func validateUserRequest(name, email string) error {
	if name == "" || len(name) > 100 {
		return errors.New("name is required and max length 100")
	}
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("valid email is required")
	}
	return nil
}

// SignInHandler обрабатывает POST /users/sign-in: вход по имени и почте
func (h *Handler) SignInHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, err := h.Store.GetUserByNameEmail(r.Context(), strings.TrimSpace(input.Name), strings.TrimSpace(input.Email))
	if err != nil {
		http.Error(w, "Invalid name or email", http.StatusUnauthorized)
		return
	}

	writeJSON(w, user)
}

// GetUserHandler обрабатывает GET /users/:id
func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, user)
}

// UpdateUserHandler обрабатывает PUT /users/:id. Роль после регистрации
// не меняется.
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Name              *string  `json:"name"`
		Email             *string  `json:"email"`
		Role              *string  `json:"role"`
		AvatarURL         *string  `json:"avatarUrl"`
		Location          *string  `json:"location"`
		Bio               *string  `json:"bio"`
		Skills            []string `json:"skills"`
		YearsOfExperience *int     `json:"yearsOfExperience"`
		CompanyName       *string  `json:"companyName"`
		ProfileCompleted  *bool    `json:"profileCompleted"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if input.Role != nil && *input.Role != string(user.Role) {
		http.Error(w, "Role cannot be changed", http.StatusBadRequest)
		return
	}

	// Обновляем поля, если они переданы
	if input.Name != nil {
		if len(*input.Name) == 0 || len(*input.Name) > 100 {
			http.Error(w, "Invalid name length", http.StatusBadRequest)
			return
		}
		user.Name = *input.Name
	}
	if input.Email != nil {
		if !strings.Contains(*input.Email, "@") {
			http.Error(w, "Invalid email", http.StatusBadRequest)
			return
		}
		user.Email = *input.Email
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Skills != nil {
		user.Skills = input.Skills
	}
	if input.YearsOfExperience != nil {
		user.YearsOfExperience = *input.YearsOfExperience
	}
	if input.CompanyName != nil {
		user.CompanyName = *input.CompanyName
	}
	if input.ProfileCompleted != nil {
		user.ProfileCompleted = *input.ProfileCompleted
	}

	if err := h.Store.UpdateUser(r.Context(), user); err != nil {
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, user)
}

// GetUserJobsHandler обрабатывает GET /users/:id/jobs: созданные задания
// и задания в работе
func (h *Handler) GetUserJobsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	created, workingOn, err := h.Store.GetUserJobs(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to get user jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, models.UserJobs{Created: created, WorkingOn: workingOn})
}
