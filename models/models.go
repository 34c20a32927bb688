package models

import "time"

// Сущность Задания
type Job struct {
	ID               string    `json:"id"`
	Title            string    `json:"title" validate:"required,max=100"`
	Description      string    `json:"description" validate:"required,max=2000"`
	Location         string    `json:"location"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Budget           float64   `json:"budget" validate:"gte=0"`
	Images           []string  `json:"images"`
	Video            string    `json:"video,omitempty"`
	Status           JobStatus `json:"status"`
	CreatedBy        string    `json:"createdBy"`
	AcceptedBy       string    `json:"acceptedBy,omitempty"`
	CloseRequestedBy string    `json:"closeRequestedBy,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Сущность Предложения
type Offer struct {
	ID            string      `json:"id"`
	JobID         string      `json:"jobId"`
	UserID        string      `json:"userId"`
	ProposedPrice float64     `json:"proposedPrice" validate:"gte=0"`
	Message       string      `json:"message"`
	Status        OfferStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Сущность Пользователя
type User struct {
	ID                string   `json:"id"`
	Name              string   `json:"name" validate:"required,max=100"`
	Email             string   `json:"email" validate:"required,email"`
	Role              Role     `json:"role"`
	AvatarURL         string   `json:"avatarUrl,omitempty"`
	Location          string   `json:"location,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	YearsOfExperience int      `json:"yearsOfExperience,omitempty"`
	CompanyName       string   `json:"companyName,omitempty"`
	ProfileCompleted  bool     `json:"profileCompleted"`
}

// Сущность Уведомления
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	JobID     string    `json:"jobId,omitempty"`
	OfferID   string    `json:"offerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ответ GET /users/:id/notifications
type NotificationFeed struct {
	UnreadCount   int            `json:"unreadCount"`
	Notifications []Notification `json:"notifications"`
}

// Ответ GET /users/:id/jobs: созданные задания и задания в работе
type UserJobs struct {
	Created   []Job `json:"created"`
	WorkingOn []Job `json:"workingOn"`
}

// Ответ POST /upload
type UploadResult struct {
	Images []string `json:"images"`
	Video  string   `json:"video,omitempty"`
}
