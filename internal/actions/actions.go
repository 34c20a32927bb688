// Package actions реализует слой действий пользователя. Каждое действие проходит
// одну и ту же цепочку: проверка прав (совещательная, на клиенте) →
// проверка перехода жизненного цикла → вызов API → принятие ответа
// сервера как новой истины. Если какая-то проверка не прошла, сетевой
// запрос не выполняется вовсе; если запрос упал, прежнее состояние
// возвращается нетронутым вместе с ошибкой.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/michaelberns/wtt/internal/apiclient"
	"github.com/michaelberns/wtt/internal/lifecycle"
	"github.com/michaelberns/wtt/internal/policy"
	"github.com/michaelberns/wtt/internal/session"
	"github.com/michaelberns/wtt/models"
)

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrNotAllowed  = errors.New("action not allowed for current user")
)

type Actions struct {
	api  *apiclient.Client
	sess session.Session
}

func New(api *apiclient.Client) *Actions {
	return &Actions{api: api}
}

// Session возвращает текущую сессию (нулевая означает, что вход не выполнен)
func (a *Actions) Session() session.Session { return a.sess }

// SignUp регистрирует аккаунт и открывает сессию
func (a *Actions) SignUp(ctx context.Context, name, email string, role models.Role) (session.Session, error) {
	u, err := a.api.CreateUser(ctx, apiclient.NewUser{Name: name, Email: email, Role: role})
	if err != nil {
		return session.Session{}, err
	}
	a.sess = session.FromUser(u)
	return a.sess, nil
}

// SignIn открывает сессию по имени и почте
func (a *Actions) SignIn(ctx context.Context, name, email string) (session.Session, error) {
	u, err := a.api.SignIn(ctx, name, email)
	if err != nil {
		return session.Session{}, err
	}
	a.sess = session.FromUser(u)
	return a.sess, nil
}

// Resume восстанавливает сессию по идентификатору пользователя
func (a *Actions) Resume(ctx context.Context, userID string) (session.Session, error) {
	u, err := a.api.GetUser(ctx, userID)
	if err != nil {
		return session.Session{}, err
	}
	a.sess = session.FromUser(u)
	return a.sess, nil
}

// SignOut уничтожает сессию
func (a *Actions) SignOut() {
	a.sess = session.Session{}
}

// PostJob публикует задание от имени заказчика
func (a *Actions) PostJob(ctx context.Context, in apiclient.NewJob) (models.Job, error) {
	if !a.sess.Active() {
		return models.Job{}, ErrNotSignedIn
	}
	if !policy.CanPostJob(a.sess) {
		return models.Job{}, ErrNotAllowed
	}
	in.CreatedBy = a.sess.UserID
	return a.api.CreateJob(ctx, in)
}

// EditJob обновляет задание; разрешено только создателю
func (a *Actions) EditJob(ctx context.Context, job models.Job, upd apiclient.JobUpdate) (models.Job, error) {
	if !a.sess.Active() {
		return job, ErrNotSignedIn
	}
	if !policy.CanEditJob(a.sess, job) {
		return job, ErrNotAllowed
	}
	updated, err := a.api.UpdateJob(ctx, job.ID, a.sess.UserID, upd)
	if err != nil {
		return job, err
	}
	return updated, nil
}

// DeleteJob удаляет задание; разрешено только создателю
func (a *Actions) DeleteJob(ctx context.Context, job models.Job) error {
	if !a.sess.Active() {
		return ErrNotSignedIn
	}
	if !policy.CanDeleteJob(a.sess, job) {
		return ErrNotAllowed
	}
	return a.api.DeleteJob(ctx, job.ID, a.sess.UserID)
}

// SubmitOffer подаёт предложение на открытое задание от имени исполнителя
func (a *Actions) SubmitOffer(ctx context.Context, job models.Job, price float64, message string) (models.Offer, error) {
	if !a.sess.Active() {
		return models.Offer{}, ErrNotSignedIn
	}
	if !policy.CanCreateOffer(a.sess) {
		return models.Offer{}, ErrNotAllowed
	}
	if err := lifecycle.CanSubmitOffer(job, a.sess.UserID); err != nil {
		return models.Offer{}, err
	}
	if price < 0 {
		return models.Offer{}, fmt.Errorf("proposed price must not be negative")
	}
	return a.api.CreateOffer(ctx, job.ID, apiclient.NewOffer{
		UserID:        a.sess.UserID,
		ProposedPrice: price,
		Message:       message,
	})
}

// AcceptOffer принимает предложение и перечитывает задание со списком
// предложений, чтобы сойтись с состоянием сервера. При ошибке исходное
// задание возвращается без изменений.
func (a *Actions) AcceptOffer(ctx context.Context, job models.Job, offer models.Offer) (models.Job, []models.Offer, error) {
	if !a.sess.Active() {
		return job, nil, ErrNotSignedIn
	}
	if !policy.CanManageOffers(a.sess, job) {
		return job, nil, ErrNotAllowed
	}
	if err := lifecycle.CanAcceptOffer(job, offer); err != nil {
		return job, nil, err
	}
	if _, err := a.api.AcceptOffer(ctx, offer.ID, a.sess.UserID); err != nil {
		return job, nil, err
	}
	return a.refreshJobAndOffers(ctx, job)
}

// RejectOffer отклоняет предложение и перечитывает состояние с сервера
func (a *Actions) RejectOffer(ctx context.Context, job models.Job, offer models.Offer) (models.Job, []models.Offer, error) {
	if !a.sess.Active() {
		return job, nil, ErrNotSignedIn
	}
	if !policy.CanManageOffers(a.sess, job) {
		return job, nil, ErrNotAllowed
	}
	if err := lifecycle.CanRejectOffer(job, offer); err != nil {
		return job, nil, err
	}
	if _, err := a.api.RejectOffer(ctx, offer.ID, a.sess.UserID); err != nil {
		return job, nil, err
	}
	return a.refreshJobAndOffers(ctx, job)
}

func (a *Actions) refreshJobAndOffers(ctx context.Context, prev models.Job) (models.Job, []models.Offer, error) {
	job, err := a.api.GetJob(ctx, prev.ID)
	if err != nil {
		return prev, nil, err
	}
	offers, err := a.api.GetOffers(ctx, prev.ID)
	if err != nil {
		return job, nil, err
	}
	return job, offers, nil
}

// RequestClose запрашивает завершение работы от имени исполнителя
func (a *Actions) RequestClose(ctx context.Context, job models.Job) (models.Job, error) {
	if !a.sess.Active() {
		return job, ErrNotSignedIn
	}
	if !policy.CanRequestClose(a.sess, job) {
		return job, ErrNotAllowed
	}
	if err := lifecycle.CanRequestClose(job, a.sess.UserID); err != nil {
		return job, err
	}
	updated, err := a.api.RequestClose(ctx, job.ID, a.sess.UserID)
	if err != nil {
		return job, err
	}
	return updated, nil
}

// ApproveClose закрывает задание от имени создателя (в том числе без запроса
// на завершение)
func (a *Actions) ApproveClose(ctx context.Context, job models.Job) (models.Job, error) {
	if !a.sess.Active() {
		return job, ErrNotSignedIn
	}
	if !policy.IsCreator(a.sess, job) {
		return job, ErrNotAllowed
	}
	if err := lifecycle.CanApproveClose(job); err != nil {
		return job, err
	}
	updated, err := a.api.ApproveClose(ctx, job.ID, a.sess.UserID)
	if err != nil {
		return job, err
	}
	return updated, nil
}

// RejectClose отклоняет запрос на завершение от имени создателя, задание
// остаётся зарезервированным
func (a *Actions) RejectClose(ctx context.Context, job models.Job) (models.Job, error) {
	if !a.sess.Active() {
		return job, ErrNotSignedIn
	}
	if !policy.IsCreator(a.sess, job) {
		return job, ErrNotAllowed
	}
	if err := lifecycle.CanRejectCloseRequest(job); err != nil {
		return job, err
	}
	updated, err := a.api.RejectClose(ctx, job.ID, a.sess.UserID)
	if err != nil {
		return job, err
	}
	return updated, nil
}
