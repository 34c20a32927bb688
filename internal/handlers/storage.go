package handlers

import (
	"context"

	"github.com/michaelberns/wtt/internal/filters"
	"github.com/michaelberns/wtt/models"
)

type StorageInterface interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByNameEmail(ctx context.Context, name, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error

	CreateJob(ctx context.Context, j *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	UpdateJob(ctx context.Context, j *models.Job) error
	DeleteJob(ctx context.Context, id string) error
	GetJobs(ctx context.Context, f filters.JobFilters) ([]models.Job, error)
	GetJobsForMap(ctx context.Context, f filters.JobFilters) ([]models.Job, error)
	GetUserJobs(ctx context.Context, userID string) (created, workingOn []models.Job, err error)

	CreateOffer(ctx context.Context, o *models.Offer) error
	GetOffer(ctx context.Context, id string) (*models.Offer, error)
	GetOffersForJob(ctx context.Context, jobID string) ([]models.Offer, error)
	UpdateOfferStatus(ctx context.Context, id string, status models.OfferStatus) error
	RejectPendingOffers(ctx context.Context, jobID, exceptOfferID string) error

	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	GetNotifications(ctx context.Context, userID string) ([]models.Notification, int, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
