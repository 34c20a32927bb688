package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/michaelberns/wtt/internal/filters"
	"github.com/michaelberns/wtt/models"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// --- Пользователи ---

type userRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Email             string         `db:"email"`
	Role              string         `db:"role"`
	AvatarURL         sql.NullString `db:"avatar_url"`
	Location          sql.NullString `db:"location"`
	Bio               sql.NullString `db:"bio"`
	Skills            pq.StringArray `db:"skills"`
	YearsOfExperience sql.NullInt64  `db:"years_of_experience"`
	CompanyName       sql.NullString `db:"company_name"`
	ProfileCompleted  bool           `db:"profile_completed"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r userRow) toModel() models.User {
	return models.User{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		Role:              models.Role(r.Role),
		AvatarURL:         r.AvatarURL.String,
		Location:          r.Location.String,
		Bio:               r.Bio.String,
		Skills:            []string(r.Skills),
		YearsOfExperience: int(r.YearsOfExperience.Int64),
		CompanyName:       r.CompanyName.String,
		ProfileCompleted:  r.ProfileCompleted,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	query := `
        INSERT INTO users (id, name, email, role, avatar_url, location, bio, skills, years_of_experience, company_name, profile_completed)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, string(u.Role),
		nullString(u.AvatarURL), nullString(u.Location), nullString(u.Bio),
		pq.StringArray(u.Skills), nullInt(u.YearsOfExperience),
		nullString(u.CompanyName), u.ProfileCompleted)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	var r userRow
	query := `SELECT * FROM users WHERE id=$1`
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		return nil, err
	}
	u := r.toModel()
	return &u, nil
}

func (s *Storage) GetUserByNameEmail(ctx context.Context, name, email string) (*models.User, error) {
	var r userRow
	query := `SELECT * FROM users WHERE LOWER(name)=LOWER($1) AND LOWER(email)=LOWER($2)`
	if err := s.db.GetContext(ctx, &r, query, name, email); err != nil {
		return nil, err
	}
	u := r.toModel()
	return &u, nil
}

func (s *Storage) UpdateUser(ctx context.Context, u *models.User) error {
	query := `
        UPDATE users
        SET name=$1, email=$2, avatar_url=$3, location=$4, bio=$5, skills=$6,
            years_of_experience=$7, company_name=$8, profile_completed=$9, updated_at=NOW()
        WHERE id=$10`
	_, err := s.db.ExecContext(ctx, query,
		u.Name, u.Email, nullString(u.AvatarURL), nullString(u.Location), nullString(u.Bio),
		pq.StringArray(u.Skills), nullInt(u.YearsOfExperience),
		nullString(u.CompanyName), u.ProfileCompleted, u.ID)
	return err
}

// --- Задания ---

type jobRow struct {
	ID               string          `db:"id"`
	Title            string          `db:"title"`
	Description      string          `db:"description"`
	Location         string          `db:"location"`
	Latitude         sql.NullFloat64 `db:"latitude"`
	Longitude        sql.NullFloat64 `db:"longitude"`
	Budget           float64         `db:"budget"`
	Images           pq.StringArray  `db:"images"`
	Video            sql.NullString  `db:"video"`
	Status           string          `db:"status"`
	CreatedBy        string          `db:"created_by"`
	AcceptedBy       sql.NullString  `db:"accepted_by"`
	CloseRequestedBy sql.NullString  `db:"close_requested_by"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r jobRow) toModel() models.Job {
	j := models.Job{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Location:         r.Location,
		Budget:           r.Budget,
		Images:           []string(r.Images),
		Video:            r.Video.String,
		Status:           models.JobStatus(r.Status),
		CreatedBy:        r.CreatedBy,
		AcceptedBy:       r.AcceptedBy.String,
		CloseRequestedBy: r.CloseRequestedBy.String,
		CreatedAt:        r.CreatedAt,
	}
	if j.Images == nil {
		j.Images = []string{}
	}
	if r.Latitude.Valid {
		v := r.Latitude.Float64
		j.Latitude = &v
	}
	if r.Longitude.Valid {
		v := r.Longitude.Float64
		j.Longitude = &v
	}
	return j
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func (s *Storage) CreateJob(ctx context.Context, j *models.Job) error {
	j.ID = uuid.NewString()
	query := `
        INSERT INTO jobs
            (id, title, description, location, latitude, longitude, budget, images, video, status, created_by)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at`
	return s.db.QueryRowContext(ctx, query,
		j.ID, j.Title, j.Description, j.Location,
		nullFloat(j.Latitude), nullFloat(j.Longitude),
		j.Budget, pq.StringArray(j.Images), nullString(j.Video),
		string(j.Status), j.CreatedBy).
		Scan(&j.CreatedAt)
}

func (s *Storage) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var r jobRow
	query := `SELECT * FROM jobs WHERE id=$1`
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		return nil, err
	}
	j := r.toModel()
	return &j, nil
}

func (s *Storage) UpdateJob(ctx context.Context, j *models.Job) error {
	query := `
        UPDATE jobs
        SET title=$1, description=$2, location=$3, latitude=$4, longitude=$5,
            budget=$6, images=$7, video=$8, status=$9, accepted_by=$10,
            close_requested_by=$11, updated_at=NOW()
        WHERE id=$12`
	_, err := s.db.ExecContext(ctx, query,
		j.Title, j.Description, j.Location,
		nullFloat(j.Latitude), nullFloat(j.Longitude),
		j.Budget, pq.StringArray(j.Images), nullString(j.Video),
		string(j.Status), nullString(j.AcceptedBy), nullString(j.CloseRequestedBy),
		j.ID)
	return err
}

func (s *Storage) DeleteJob(ctx context.Context, id string) error {
	query := `DELETE FROM jobs WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// jobFilterClause строит WHERE по фильтрам списка. Навыки сопоставляются
// с текстом задания: отдельного поля навыков у задания нет.
func jobFilterClause(f filters.JobFilters, geoOnly bool) (string, []interface{}) {
	var conds []string
	var args []interface{}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.MinBudget != nil {
		conds = append(conds, "budget >= "+next(*f.MinBudget))
	}
	if f.MaxBudget != nil {
		conds = append(conds, "budget <= "+next(*f.MaxBudget))
	}
	if f.Query != "" {
		p := next("%" + f.Query + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if f.Location != "" {
		conds = append(conds, "location ILIKE "+next("%"+f.Location+"%"))
	}
	for _, skill := range f.Skills {
		p := next("%" + skill + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if f.Status != "" && f.Status != filters.StatusAll {
		conds = append(conds, "status = "+next(string(f.Status)))
	}
	if geoOnly {
		conds = append(conds, "latitude IS NOT NULL AND longitude IS NOT NULL")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Storage) selectJobs(ctx context.Context, f filters.JobFilters, geoOnly bool) ([]models.Job, error) {
	where, args := jobFilterClause(f, geoOnly)
	query := `SELECT * FROM jobs` + where + ` ORDER BY created_at DESC`

	rows := []jobRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	jobs := make([]models.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.toModel())
	}
	return jobs, nil
}

func (s *Storage) GetJobs(ctx context.Context, f filters.JobFilters) ([]models.Job, error) {
	return s.selectJobs(ctx, f, false)
}

func (s *Storage) GetJobsForMap(ctx context.Context, f filters.JobFilters) ([]models.Job, error) {
	return s.selectJobs(ctx, f, true)
}

func (s *Storage) GetUserJobs(ctx context.Context, userID string) (created, workingOn []models.Job, err error) {
	createdRows := []jobRow{}
	query := `SELECT * FROM jobs WHERE created_by=$1 ORDER BY created_at DESC`
	if err = s.db.SelectContext(ctx, &createdRows, query, userID); err != nil {
		return nil, nil, err
	}
	workingRows := []jobRow{}
	query = `SELECT * FROM jobs WHERE accepted_by=$1 ORDER BY created_at DESC`
	if err = s.db.SelectContext(ctx, &workingRows, query, userID); err != nil {
		return nil, nil, err
	}
	created = make([]models.Job, 0, len(createdRows))
	for _, r := range createdRows {
		created = append(created, r.toModel())
	}
	workingOn = make([]models.Job, 0, len(workingRows))
	for _, r := range workingRows {
		workingOn = append(workingOn, r.toModel())
	}
	return created, workingOn, nil
}

// --- Предложения ---

type offerRow struct {
	ID            string    `db:"id"`
	JobID         string    `db:"job_id"`
	UserID        string    `db:"user_id"`
	ProposedPrice float64   `db:"proposed_price"`
	Message       string    `db:"message"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r offerRow) toModel() models.Offer {
	return models.Offer{
		ID:            r.ID,
		JobID:         r.JobID,
		UserID:        r.UserID,
		ProposedPrice: r.ProposedPrice,
		Message:       r.Message,
		Status:        models.OfferStatus(r.Status),
		CreatedAt:     r.CreatedAt,
	}
}

func (s *Storage) CreateOffer(ctx context.Context, o *models.Offer) error {
	o.ID = uuid.NewString()
	query := `
        INSERT INTO offers (id, job_id, user_id, proposed_price, message, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`
	return s.db.QueryRowContext(ctx, query,
		o.ID, o.JobID, o.UserID, o.ProposedPrice, o.Message, string(o.Status)).
		Scan(&o.CreatedAt)
}

func (s *Storage) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	var r offerRow
	query := `SELECT * FROM offers WHERE id=$1`
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		return nil, err
	}
	o := r.toModel()
	return &o, nil
}

func (s *Storage) GetOffersForJob(ctx context.Context, jobID string) ([]models.Offer, error) {
	rows := []offerRow{}
	query := `SELECT * FROM offers WHERE job_id=$1 ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &rows, query, jobID); err != nil {
		return nil, err
	}
	offers := make([]models.Offer, 0, len(rows))
	for _, r := range rows {
		offers = append(offers, r.toModel())
	}
	return offers, nil
}

func (s *Storage) UpdateOfferStatus(ctx context.Context, id string, status models.OfferStatus) error {
	query := `UPDATE offers SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := s.db.ExecContext(ctx, query, string(status), id)
	return err
}

// RejectPendingOffers отклоняет остальные ожидающие предложения задания
// после принятия одного из них
func (s *Storage) RejectPendingOffers(ctx context.Context, jobID, exceptOfferID string) error {
	query := `UPDATE offers SET status='rejected', updated_at=NOW() WHERE job_id=$1 AND id<>$2 AND status='pending'`
	_, err := s.db.ExecContext(ctx, query, jobID, exceptOfferID)
	return err
}

// --- Уведомления ---

type notificationRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Message   string         `db:"message"`
	Read      bool           `db:"read"`
	JobID     sql.NullString `db:"job_id"`
	OfferID   sql.NullString `db:"offer_id"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r notificationRow) toModel() models.Notification {
	return models.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Message:   r.Message,
		Read:      r.Read,
		JobID:     r.JobID.String,
		OfferID:   r.OfferID.String,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Storage) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.NewString()
	query := `
        INSERT INTO notifications (id, user_id, message, read, job_id, offer_id)
        VALUES ($1, $2, $3, false, $4, $5)
        RETURNING created_at`
	return s.db.QueryRowContext(ctx, query,
		n.ID, n.UserID, n.Message, nullString(n.JobID), nullString(n.OfferID)).
		Scan(&n.CreatedAt)
}

func (s *Storage) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	var r notificationRow
	query := `SELECT * FROM notifications WHERE id=$1`
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		return nil, err
	}
	n := r.toModel()
	return &n, nil
}

func (s *Storage) GetNotifications(ctx context.Context, userID string) ([]models.Notification, int, error) {
	rows := []notificationRow{}
	query := `SELECT * FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, 0, err
	}
	unread := 0
	list := make([]models.Notification, 0, len(rows))
	for _, r := range rows {
		if !r.Read {
			unread++
		}
		list = append(list, r.toModel())
	}
	return list, unread, nil
}

func (s *Storage) MarkNotificationRead(ctx context.Context, id string) error {
	query := `UPDATE notifications SET read=true WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}
