package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/michaelberns/wtt/internal/filters"
	"github.com/michaelberns/wtt/internal/handlers/testutils"
	"github.com/michaelberns/wtt/models"
)

// MockStorage реализует хранилище в памяти для тестов хендлеров
type MockStorage struct {
	users         map[string]models.User
	jobs          map[string]models.Job
	offers        map[string]models.Offer
	notifications map[string]models.Notification
	seq           int
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		users:         make(map[string]models.User),
		jobs:          make(map[string]models.Job),
		offers:        make(map[string]models.Offer),
		notifications: make(map[string]models.Notification),
	}
}

func (m *MockStorage) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *MockStorage) CreateUser(_ context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = m.nextID("u")
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MockStorage) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &u, nil
}

func (m *MockStorage) GetUserByNameEmail(_ context.Context, name, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Name == name && u.Email == email {
			return &u, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *MockStorage) UpdateUser(_ context.Context, u *models.User) error {
	m.users[u.ID] = *u
	return nil
}

func (m *MockStorage) CreateJob(_ context.Context, j *models.Job) error {
	if j.ID == "" {
		j.ID = m.nextID("j")
	}
	j.CreatedAt = time.Now()
	m.jobs[j.ID] = *j
	return nil
}

func (m *MockStorage) GetJob(_ context.Context, id string) (*models.Job, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &j, nil
}

func (m *MockStorage) UpdateJob(_ context.Context, j *models.Job) error {
	m.jobs[j.ID] = *j
	return nil
}

func (m *MockStorage) DeleteJob(_ context.Context, id string) error {
	delete(m.jobs, id)
	return nil
}

func (m *MockStorage) GetJobs(_ context.Context, _ filters.JobFilters) ([]models.Job, error) {
	out := []models.Job{}
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (m *MockStorage) GetJobsForMap(_ context.Context, _ filters.JobFilters) ([]models.Job, error) {
	out := []models.Job{}
	for _, j := range m.jobs {
		if j.Latitude != nil && j.Longitude != nil {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *MockStorage) GetUserJobs(_ context.Context, userID string) (created, workingOn []models.Job, err error) {
	created, workingOn = []models.Job{}, []models.Job{}
	for _, j := range m.jobs {
		if j.CreatedBy == userID {
			created = append(created, j)
		}
		if j.AcceptedBy == userID {
			workingOn = append(workingOn, j)
		}
	}
	return created, workingOn, nil
}

func (m *MockStorage) CreateOffer(_ context.Context, o *models.Offer) error {
	if o.ID == "" {
		o.ID = m.nextID("o")
	}
	o.CreatedAt = time.Now()
	m.offers[o.ID] = *o
	return nil
}

func (m *MockStorage) GetOffer(_ context.Context, id string) (*models.Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &o, nil
}

func (m *MockStorage) GetOffersForJob(_ context.Context, jobID string) ([]models.Offer, error) {
	out := []models.Offer{}
	for _, o := range m.offers {
		if o.JobID == jobID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockStorage) UpdateOfferStatus(_ context.Context, id string, status models.OfferStatus) error {
	o, ok := m.offers[id]
	if !ok {
		return errors.New("not found")
	}
	o.Status = status
	m.offers[id] = o
	return nil
}

func (m *MockStorage) RejectPendingOffers(_ context.Context, jobID, exceptOfferID string) error {
	for id, o := range m.offers {
		if o.JobID == jobID && o.ID != exceptOfferID && o.Status == models.OfferPending {
			o.Status = models.OfferRejected
			m.offers[id] = o
		}
	}
	return nil
}

func (m *MockStorage) CreateNotification(_ context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = m.nextID("n")
	}
	n.CreatedAt = time.Now()
	m.notifications[n.ID] = *n
	return nil
}

func (m *MockStorage) GetNotification(_ context.Context, id string) (*models.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &n, nil
}

func (m *MockStorage) GetNotifications(_ context.Context, userID string) ([]models.Notification, int, error) {
	out := []models.Notification{}
	unread := 0
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
			if !n.Read {
				unread++
			}
		}
	}
	return out, unread, nil
}

func (m *MockStorage) MarkNotificationRead(_ context.Context, id string) error {
	n, ok := m.notifications[id]
	if !ok {
		return errors.New("not found")
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}

// --- помощники ---

func newFixture() (*Handler, *MockStorage) {
	store := NewMockStorage()
	return NewHandler(store), store
}

func seedUsers(store *MockStorage) {
	store.users["client-1"] = models.User{ID: "client-1", Name: "Ann", Email: "ann@x.y", Role: models.RoleClient}
	store.users["worker-1"] = models.User{ID: "worker-1", Name: "Bob", Email: "bob@x.y", Role: models.RoleLabour}
	store.users["worker-2"] = models.User{ID: "worker-2", Name: "Кир", Email: "kir@x.y", Role: models.RoleLabour}
}

func jsonReq(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- пользователи ---

func TestCreateUserHandler(t *testing.T) {
	h, _ := newFixture()

	req := jsonReq(http.MethodPost, "/api/users", map[string]string{
		"name": "Ann", "email": "ann@x.y", "role": "client",
	})
	w := httptest.NewRecorder()
	h.CreateUserHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var u models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	require.NotEmpty(t, u.ID)
	require.Equal(t, models.RoleClient, u.Role)
}

func TestCreateUserHandlerBadRole(t *testing.T) {
	h, _ := newFixture()

	req := jsonReq(http.MethodPost, "/api/users", map[string]string{
		"name": "Ann", "email": "ann@x.y", "role": "boss",
	})
	w := httptest.NewRecorder()
	h.CreateUserHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignInHandler(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)

	req := jsonReq(http.MethodPost, "/api/users/sign-in", map[string]string{"name": "Ann", "email": "ann@x.y"})
	w := httptest.NewRecorder()
	h.SignInHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = jsonReq(http.MethodPost, "/api/users/sign-in", map[string]string{"name": "Ann", "email": "wrong@x.y"})
	w = httptest.NewRecorder()
	h.SignInHandler(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- задания ---

func seedOpenJob(store *MockStorage) models.Job {
	job := models.Job{ID: "j1", Title: "Fix roof", Description: "asap", Budget: 500,
		Status: models.JobOpen, CreatedBy: "client-1", Images: []string{}}
	store.jobs[job.ID] = job
	return job
}

func seedReservedJob(store *MockStorage) models.Job {
	job := models.Job{ID: "j2", Title: "Paint fence", Description: "white", Budget: 200,
		Status: models.JobReserved, CreatedBy: "client-1", AcceptedBy: "worker-1", Images: []string{}}
	store.jobs[job.ID] = job
	return job
}

func TestCreateJobHandlerLabourForbidden(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)

	req := jsonReq(http.MethodPost, "/api/jobs", map[string]any{
		"title": "t", "description": "d", "budget": 10, "createdBy": "worker-1",
	})
	w := httptest.NewRecorder()
	h.CreateJobHandler(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, store.jobs)
}

func TestCreateJobHandlerStartsOpen(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)

	req := jsonReq(http.MethodPost, "/api/jobs", map[string]any{
		"title": "t", "description": "d", "budget": 10, "createdBy": "client-1",
	})
	w := httptest.NewRecorder()
	h.CreateJobHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var job models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	require.Equal(t, models.JobOpen, job.Status)
}

func TestUpdateJobHandlerForbiddenForStranger(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedOpenJob(store)

	req := jsonReq(http.MethodPut, "/api/jobs/j1", map[string]any{"title": "hacked"})
	req.Header.Set("X-User-Id", "worker-1")
	req = testutils.WithChiURLParams(req, map[string]string{"jobId": "j1"})
	w := httptest.NewRecorder()
	h.UpdateJobHandler(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Fix roof", store.jobs["j1"].Title)
}

func TestDeleteJobHandlerCreatorOnly(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedOpenJob(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/jobs/j1", nil)
	req.Header.Set("X-User-Id", "worker-1")
	req = testutils.WithChiURLParams(req, map[string]string{"jobId": "j1"})
	w := httptest.NewRecorder()
	h.DeleteJobHandler(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, store.jobs, "j1")

	req = httptest.NewRequest(http.MethodDelete, "/api/jobs/j1", nil)
	req.Header.Set("X-User-Id", "client-1")
	req = testutils.WithChiURLParams(req, map[string]string{"jobId": "j1"})
	w = httptest.NewRecorder()
	h.DeleteJobHandler(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotContains(t, store.jobs, "j1")
}

func TestGetJobsHandlerBadStatus(t *testing.T) {
	h, _ := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?status=archived", nil)
	w := httptest.NewRecorder()
	h.GetJobsHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

// --- предложения ---

func seedOffer(store *MockStorage, id, jobID, userID string, status models.OfferStatus) models.Offer {
	o := models.Offer{ID: id, JobID: jobID, UserID: userID, ProposedPrice: 100, Status: status}
	store.offers[id] = o
	return o
}

func TestCreateOfferHandlerOwnJobForbidden(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedOpenJob(store)
	// Создатель задания с ролью labour всё равно не может подать на своё
	store.users["client-1"] = models.User{ID: "client-1", Name: "Ann", Email: "ann@x.y", Role: models.RoleLabour}

	req := jsonReq(http.MethodPost, "/api/jobs/j1/offers", map[string]any{"userId": "client-1", "proposedPrice": 100})
	req = testutils.WithChiURLParams(req, map[string]string{"jobId": "j1"})
	w := httptest.NewRecorder()
	h.CreateOfferHandler(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, store.offers)
}

func TestCreateOfferHandlerNotifiesCreator(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedOpenJob(store)

	req := jsonReq(http.MethodPost, "/api/jobs/j1/offers", map[string]any{
		"userId": "worker-1", "proposedPrice": 450, "message": "can start tomorrow",
	})
	req = testutils.WithChiURLParams(req, map[string]string{"jobId": "j1"})
	w := httptest.NewRecorder()
	h.CreateOfferHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var offer models.Offer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offer))
	require.Equal(t, models.OfferPending, offer.Status)

	list, unread, err := store.GetNotifications(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1, unread)
}

func TestAcceptOfferHandlerReservesJobAndRejectsSiblings(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedOpenJob(store)
	seedOffer(store, "o1", "j1", "worker-1", models.OfferPending)
	seedOffer(store, "o2", "j1", "worker-2", models.OfferPending)

	req := httptest.NewRequest(http.MethodPost, "/api/offers/o1/accept", nil)
	req.Header.Set("X-User-Id", "client-1")
	req = testutils.WithChiURLParams(req, map[string]string{"offerId": "o1"})
	w := httptest.NewRecorder()
	h.AcceptOfferHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	job := store.jobs["j1"]
	require.Equal(t, models.JobReserved, job.Status)
	require.Equal(t, "worker-1", job.AcceptedBy)

	require.Equal(t, models.OfferAccepted, store.offers["o1"].Status)
	require.Equal(t, models.OfferRejected, store.offers["o2"].Status)

	// Победитель получает уведомление
	list, _, err := store.GetNotifications(context.Background(), "worker-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestAcceptOfferHandlerStrangerForbidden(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedOpenJob(store)
	seedOffer(store, "o1", "j1", "worker-1", models.OfferPending)

	req := httptest.NewRequest(http.MethodPost, "/api/offers/o1/accept", nil)
	req.Header.Set("X-User-Id", "worker-2")
	req = testutils.WithChiURLParams(req, map[string]string{"offerId": "o1"})
	w := httptest.NewRecorder()
	h.AcceptOfferHandler(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, models.JobOpen, store.jobs["j1"].Status)
	require.Equal(t, models.OfferPending, store.offers["o1"].Status)
}

func TestAcceptOfferHandlerReservedJobRejected(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedReservedJob(store)
	seedOffer(store, "o3", "j2", "worker-2", models.OfferPending)

	req := httptest.NewRequest(http.MethodPost, "/api/offers/o3/accept", nil)
	req.Header.Set("X-User-Id", "client-1")
	req = testutils.WithChiURLParams(req, map[string]string{"offerId": "o3"})
	w := httptest.NewRecorder()
	h.AcceptOfferHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "worker-1", store.jobs["j2"].AcceptedBy)
}

// --- завершение задания ---

func closeReq(method, path, jobID, actor string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if actor != "" {
		req.Header.Set("X-User-Id", actor)
	}
	return testutils.WithChiURLParams(req, map[string]string{"jobId": jobID})
}

func TestRequestCloseHandler(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedReservedJob(store)

	// Посторонний исполнитель не может запросить завершение
	w := httptest.NewRecorder()
	h.RequestCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/request-close", "j2", "worker-2"))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, store.jobs["j2"].CloseRequestedBy)

	w = httptest.NewRecorder()
	h.RequestCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/request-close", "j2", "worker-1"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "worker-1", store.jobs["j2"].CloseRequestedBy)

	// Повторный запрос отклоняется
	w = httptest.NewRecorder()
	h.RequestCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/request-close", "j2", "worker-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Создатель получил уведомление
	list, _, err := store.GetNotifications(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestApproveCloseHandler(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	job := seedReservedJob(store)
	job.CloseRequestedBy = "worker-1"
	store.jobs[job.ID] = job

	// Исполнитель закрыть не может
	w := httptest.NewRecorder()
	h.ApproveCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/close", "j2", "worker-1"))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.ApproveCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/close", "j2", "client-1"))
	require.Equal(t, http.StatusOK, w.Code)

	got := store.jobs["j2"]
	require.Equal(t, models.JobClosed, got.Status)
	require.Empty(t, got.CloseRequestedBy)

	// Закрытое задание закрыть повторно нельзя
	w = httptest.NewRecorder()
	h.ApproveCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/close", "j2", "client-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveCloseWithoutRequest(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedReservedJob(store)

	// Создатель может закрыть и без запроса на завершение
	w := httptest.NewRecorder()
	h.ApproveCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/close", "j2", "client-1"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.JobClosed, store.jobs["j2"].Status)
}

func TestRejectCloseHandler(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedReservedJob(store)

	// Без ожидающего запроса отклонять нечего
	w := httptest.NewRecorder()
	h.RejectCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/reject-close", "j2", "client-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	job := store.jobs["j2"]
	job.CloseRequestedBy = "worker-1"
	store.jobs["j2"] = job

	w = httptest.NewRecorder()
	h.RejectCloseHandler(w, closeReq(http.MethodPost, "/api/jobs/j2/reject-close", "j2", "client-1"))
	require.Equal(t, http.StatusOK, w.Code)

	got := store.jobs["j2"]
	require.Equal(t, models.JobReserved, got.Status)
	require.Empty(t, got.CloseRequestedBy)
	require.Equal(t, "worker-1", got.AcceptedBy)
}

// --- уведомления ---

func TestMarkNotificationReadHandler(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	store.notifications["n1"] = models.Notification{ID: "n1", UserID: "worker-1", Message: "hello"}

	// Чужое уведомление отметить нельзя
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/n1/read", nil)
	req.Header.Set("X-User-Id", "worker-2")
	req = testutils.WithChiURLParams(req, map[string]string{"notificationId": "n1"})
	w := httptest.NewRecorder()
	h.MarkNotificationReadHandler(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.False(t, store.notifications["n1"].Read)

	req = httptest.NewRequest(http.MethodPost, "/api/notifications/n1/read", nil)
	req.Header.Set("X-User-Id", "worker-1")
	req = testutils.WithChiURLParams(req, map[string]string{"notificationId": "n1"})
	w = httptest.NewRecorder()
	h.MarkNotificationReadHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, store.notifications["n1"].Read)
}

func TestGetUserJobsHandler(t *testing.T) {
	h, store := newFixture()
	seedUsers(store)
	seedOpenJob(store)
	seedReservedJob(store)

	req := httptest.NewRequest(http.MethodGet, "/api/users/worker-1/jobs", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"userId": "worker-1"})
	w := httptest.NewRecorder()
	h.GetUserJobsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var uj models.UserJobs
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uj))
	require.Empty(t, uj.Created)
	require.Len(t, uj.WorkingOn, 1)
	require.Equal(t, "j2", uj.WorkingOn[0].ID)
}
