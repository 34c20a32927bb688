// Package apiclient реализует клиента REST API маркетплейса. Сервер владеет
// состоянием; клиент лишь отражает его ответы. Все изменяющие вызовы
// передают инициатора в заголовке X-User-Id.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/michaelberns/wtt/internal/filters"
	"github.com/michaelberns/wtt/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New создаёт клиент для базового адреса API, например http://localhost:8080/api
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient создаёт клиент с собственным http.Client (для тестов)
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// BaseURL возвращает базовый адрес API
func (c *Client) BaseURL() string { return c.baseURL }

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path, userID string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &ReachError{BaseURL: c.baseURL, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ReachError{BaseURL: c.baseURL, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{Code: res.StatusCode, Body: string(data)}
	}
	return &response{status: res.StatusCode, header: res.Header, body: data}, nil
}

func decodeJSON(data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &DecodeError{Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// --- Пользователи ---

type NewUser struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type UserUpdate struct {
	Name              *string  `json:"name,omitempty"`
	Email             *string  `json:"email,omitempty"`
	AvatarURL         *string  `json:"avatarUrl,omitempty"`
	Location          *string  `json:"location,omitempty"`
	Bio               *string  `json:"bio,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	YearsOfExperience *int     `json:"yearsOfExperience,omitempty"`
	CompanyName       *string  `json:"companyName,omitempty"`
	ProfileCompleted  *bool    `json:"profileCompleted,omitempty"`
}

// CreateUser регистрирует аккаунт. POST /users
func (c *Client) CreateUser(ctx context.Context, in NewUser) (models.User, error) {
	res, err := c.do(ctx, http.MethodPost, "/users", "", in)
	if err != nil {
		return models.User{}, err
	}
	if len(bytes.TrimSpace(res.body)) == 0 {
		// Пустое тело: пробуем дочитать созданного пользователя по Location
		if loc := res.header.Get("Location"); loc != "" {
			parts := strings.Split(strings.TrimRight(loc, "/"), "/")
			if id := parts[len(parts)-1]; id != "" {
				return c.GetUser(ctx, id)
			}
		}
		return models.User{}, &DecodeError{Err: errors.New("server returned no user data")}
	}
	var u models.User
	if err := decodeJSON(res.body, &u); err != nil {
		return models.User{}, err
	}
	if u.ID == "" {
		return models.User{}, &DecodeError{Err: errors.New("server did not return a user id")}
	}
	return u, nil
}

// SignIn выполняет вход по имени и почте. POST /users/sign-in
func (c *Client) SignIn(ctx context.Context, name, email string) (models.User, error) {
	in := map[string]string{
		"name":  strings.TrimSpace(name),
		"email": strings.TrimSpace(email),
	}
	res, err := c.do(ctx, http.MethodPost, "/users/sign-in", "", in)
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := decodeJSON(res.body, &u); err != nil {
		return models.User{}, err
	}
	if u.ID == "" {
		return models.User{}, &DecodeError{Err: errors.New("server did not return a user id")}
	}
	return u, nil
}

// GetUser читает профиль. GET /users/:id
func (c *Client) GetUser(ctx context.Context, id string) (models.User, error) {
	res, err := c.do(ctx, http.MethodGet, "/users/"+id, "", nil)
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := decodeJSON(res.body, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UpdateUser обновляет профиль. PUT /users/:id
func (c *Client) UpdateUser(ctx context.Context, id string, in UserUpdate) (models.User, error) {
	res, err := c.do(ctx, http.MethodPut, "/users/"+id, id, in)
	if err != nil {
		return models.User{}, err
	}
	if len(bytes.TrimSpace(res.body)) == 0 {
		return c.GetUser(ctx, id)
	}
	var u models.User
	if err := decodeJSON(res.body, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// --- Задания ---

type NewJob struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Budget      float64  `json:"budget"`
	Images      []string `json:"images"`
	Video       string   `json:"video,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CreatedBy   string   `json:"createdBy"`
}

type JobUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Images      []string `json:"images,omitempty"`
	Video       *string  `json:"video,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

func jobsPath(base string, f filters.JobFilters) string {
	if qs := f.QueryString(); qs != "" {
		return base + "?" + qs
	}
	return base
}

// GetJobs возвращает список заданий с фильтрами. GET /jobs
func (c *Client) GetJobs(ctx context.Context, f filters.JobFilters) ([]models.Job, error) {
	res, err := c.do(ctx, http.MethodGet, jobsPath("/jobs", f), "", nil)
	if err != nil {
		return nil, err
	}
	var jobs []models.Job
	if err := decodeJSON(res.body, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobsForMap возвращает задания с координатами для карты. GET /jobs/map
func (c *Client) GetJobsForMap(ctx context.Context, f filters.JobFilters) ([]models.Job, error) {
	res, err := c.do(ctx, http.MethodGet, jobsPath("/jobs/map", f), "", nil)
	if err != nil {
		return nil, err
	}
	var jobs []models.Job
	if err := decodeJSON(res.body, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob читает задание. GET /jobs/:id
func (c *Client) GetJob(ctx context.Context, id string) (models.Job, error) {
	res, err := c.do(ctx, http.MethodGet, "/jobs/"+id, "", nil)
	if err != nil {
		return models.Job{}, err
	}
	var job models.Job
	if err := decodeJSON(res.body, &job); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

// CreateJob создаёт задание. POST /jobs
func (c *Client) CreateJob(ctx context.Context, in NewJob) (models.Job, error) {
	res, err := c.do(ctx, http.MethodPost, "/jobs", "", in)
	if err != nil {
		return models.Job{}, err
	}
	var job models.Job
	if err := decodeJSON(res.body, &job); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

// UpdateJob обновляет задание от имени создателя. PUT /jobs/:id
func (c *Client) UpdateJob(ctx context.Context, id, userID string, in JobUpdate) (models.Job, error) {
	res, err := c.do(ctx, http.MethodPut, "/jobs/"+id, userID, in)
	if err != nil {
		return models.Job{}, err
	}
	var job models.Job
	if err := decodeJSON(res.body, &job); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

// DeleteJob удаляет задание от имени создателя. DELETE /jobs/:id
func (c *Client) DeleteJob(ctx context.Context, id, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/jobs/"+id, userID, nil)
	return err
}

func (c *Client) postJob(ctx context.Context, path, userID string) (models.Job, error) {
	res, err := c.do(ctx, http.MethodPost, path, userID, nil)
	if err != nil {
		return models.Job{}, err
	}
	var job models.Job
	if err := decodeJSON(res.body, &job); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

// RequestClose запрашивает завершение от имени исполнителя. POST /jobs/:id/request-close
func (c *Client) RequestClose(ctx context.Context, jobID, userID string) (models.Job, error) {
	return c.postJob(ctx, "/jobs/"+jobID+"/request-close", userID)
}

// ApproveClose закрывает задание от имени создателя. POST /jobs/:id/close
func (c *Client) ApproveClose(ctx context.Context, jobID, userID string) (models.Job, error) {
	return c.postJob(ctx, "/jobs/"+jobID+"/close", userID)
}

// RejectClose отклоняет запрос на завершение от имени создателя. POST /jobs/:id/reject-close
func (c *Client) RejectClose(ctx context.Context, jobID, userID string) (models.Job, error) {
	return c.postJob(ctx, "/jobs/"+jobID+"/reject-close", userID)
}

// --- Предложения ---

type NewOffer struct {
	UserID        string  `json:"userId"`
	ProposedPrice float64 `json:"proposedPrice"`
	Message       string  `json:"message"`
}

// GetOffers возвращает предложения по заданию. GET /jobs/:id/offers
func (c *Client) GetOffers(ctx context.Context, jobID string) ([]models.Offer, error) {
	res, err := c.do(ctx, http.MethodGet, "/jobs/"+jobID+"/offers", "", nil)
	if err != nil {
		return nil, err
	}
	var offers []models.Offer
	if err := decodeJSON(res.body, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// CreateOffer подаёт предложение на задание. POST /jobs/:id/offers
func (c *Client) CreateOffer(ctx context.Context, jobID string, in NewOffer) (models.Offer, error) {
	res, err := c.do(ctx, http.MethodPost, "/jobs/"+jobID+"/offers", "", in)
	if err != nil {
		return models.Offer{}, err
	}
	var offer models.Offer
	if err := decodeJSON(res.body, &offer); err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

func (c *Client) postOffer(ctx context.Context, path, userID string) (models.Offer, error) {
	res, err := c.do(ctx, http.MethodPost, path, userID, nil)
	if err != nil {
		return models.Offer{}, err
	}
	var offer models.Offer
	if err := decodeJSON(res.body, &offer); err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

// AcceptOffer принимает предложение от имени создателя задания. POST /offers/:id/accept
func (c *Client) AcceptOffer(ctx context.Context, offerID, userID string) (models.Offer, error) {
	return c.postOffer(ctx, "/offers/"+offerID+"/accept", userID)
}

// RejectOffer отклоняет предложение от имени создателя задания. POST /offers/:id/reject
func (c *Client) RejectOffer(ctx context.Context, offerID, userID string) (models.Offer, error) {
	return c.postOffer(ctx, "/offers/"+offerID+"/reject", userID)
}

// --- Уведомления ---

// GetNotifications возвращает уведомления пользователя. GET /users/:id/notifications
func (c *Client) GetNotifications(ctx context.Context, userID string) (models.NotificationFeed, error) {
	res, err := c.do(ctx, http.MethodGet, "/users/"+userID+"/notifications", "", nil)
	if err != nil {
		return models.NotificationFeed{}, err
	}
	var raw struct {
		UnreadCount   *int                  `json:"unreadCount"`
		Notifications []models.Notification `json:"notifications"`
	}
	if err := decodeJSON(res.body, &raw); err != nil {
		return models.NotificationFeed{}, err
	}
	feed := models.NotificationFeed{Notifications: raw.Notifications}
	if feed.Notifications == nil {
		feed.Notifications = []models.Notification{}
	}
	if raw.UnreadCount != nil {
		feed.UnreadCount = *raw.UnreadCount
	} else {
		for _, n := range feed.Notifications {
			if !n.Read {
				feed.UnreadCount++
			}
		}
	}
	return feed, nil
}

// MarkNotificationRead отмечает уведомление прочитанным. POST /notifications/:id/read
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	_, err := c.do(ctx, http.MethodPost, "/notifications/"+notificationID+"/read", userID, nil)
	return err
}

// --- Задания пользователя ---

// GetUserJobs возвращает созданные и взятые в работу задания. GET /users/:id/jobs
func (c *Client) GetUserJobs(ctx context.Context, userID string) (models.UserJobs, error) {
	res, err := c.do(ctx, http.MethodGet, "/users/"+userID+"/jobs", "", nil)
	if err != nil {
		return models.UserJobs{}, err
	}
	var jobs models.UserJobs
	if err := decodeJSON(res.body, &jobs); err != nil {
		return models.UserJobs{}, err
	}
	if jobs.Created == nil {
		jobs.Created = []models.Job{}
	}
	if jobs.WorkingOn == nil {
		jobs.WorkingOn = []models.Job{}
	}
	return jobs, nil
}

// --- Загрузка файлов ---

type UploadFile struct {
	Name    string
	Content io.Reader
}

// UploadMedia загружает изображения и необязательное видео.
// POST /upload, multipart/form-data; возвращает URL-ы для создания задания.
func (c *Client) UploadMedia(ctx context.Context, images []UploadFile, video *UploadFile) (models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range images {
		part, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return models.UploadResult{}, err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return models.UploadResult{}, err
		}
	}
	if video != nil {
		part, err := mw.CreateFormFile("video", video.Name)
		if err != nil {
			return models.UploadResult{}, err
		}
		if _, err := io.Copy(part, video.Content); err != nil {
			return models.UploadResult{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return models.UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return models.UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return models.UploadResult{}, &ReachError{BaseURL: c.baseURL, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return models.UploadResult{}, &ReachError{BaseURL: c.baseURL, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return models.UploadResult{}, &StatusError{Code: res.StatusCode, Body: string(data)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.UploadResult{Images: []string{}}, nil
	}
	var out models.UploadResult
	if err := decodeJSON(data, &out); err != nil {
		return models.UploadResult{}, err
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	return out, nil
}
