// Package lifecycle проверяет допустимость переходов состояния задания
// и предложения до обращения к серверу. Клиент сам итоговое состояние не
// вычисляет: после успешного запроса истиной считается ответ сервера.
//
// Переходы: open → reserved (принятие предложения), reserved → reserved
// (запрос/отклонение завершения), reserved → closed (закрытие создателем).
// Статус closed терминальный.
package lifecycle

import (
	"errors"

	"github.com/michaelberns/wtt/models"
)

var (
	ErrJobClosed             = errors.New("job is closed")
	ErrJobNotOpen            = errors.New("job is not open")
	ErrJobNotReserved        = errors.New("job is not reserved")
	ErrOfferNotPending       = errors.New("offer is not pending")
	ErrOfferJobMismatch      = errors.New("offer does not belong to this job")
	ErrOwnJob                = errors.New("cannot make an offer on own job")
	ErrNotAcceptedWorker     = errors.New("only the accepted worker may request close")
	ErrCloseAlreadyRequested = errors.New("close already requested")
	ErrNoCloseRequest        = errors.New("no close request pending")
)

// CanSubmitOffer разрешает подачу предложения только на чужое открытое задание
func CanSubmitOffer(job models.Job, actorID string) error {
	if actorID != "" && actorID == job.CreatedBy {
		return ErrOwnJob
	}
	if job.Status == models.JobClosed {
		return ErrJobClosed
	}
	if job.Status != models.JobOpen {
		return ErrJobNotOpen
	}
	return nil
}

// CanAcceptOffer разрешает принять ожидающее предложение на открытое задание
func CanAcceptOffer(job models.Job, offer models.Offer) error {
	if offer.JobID != job.ID {
		return ErrOfferJobMismatch
	}
	if job.Status == models.JobClosed {
		return ErrJobClosed
	}
	if job.Status != models.JobOpen {
		return ErrJobNotOpen
	}
	if offer.Status != models.OfferPending {
		return ErrOfferNotPending
	}
	return nil
}

// CanRejectOffer разрешает отклонить только ожидающее предложение
func CanRejectOffer(job models.Job, offer models.Offer) error {
	if offer.JobID != job.ID {
		return ErrOfferJobMismatch
	}
	if job.Status == models.JobClosed {
		return ErrJobClosed
	}
	if offer.Status != models.OfferPending {
		return ErrOfferNotPending
	}
	return nil
}

// CanRequestClose разрешает запрос завершения принятому исполнителю
// зарезервированного задания; повторный запрос не допускается
func CanRequestClose(job models.Job, actorID string) error {
	if job.Status == models.JobClosed {
		return ErrJobClosed
	}
	if job.Status != models.JobReserved {
		return ErrJobNotReserved
	}
	if actorID == "" || actorID != job.AcceptedBy {
		return ErrNotAcceptedWorker
	}
	if job.CloseRequestedBy == actorID {
		return ErrCloseAlreadyRequested
	}
	return nil
}

// CanApproveClose разрешает создателю закрыть зарезервированное задание;
// закрытие допустимо и без ожидающего запроса на завершение
func CanApproveClose(job models.Job) error {
	if job.Status == models.JobClosed {
		return ErrJobClosed
	}
	if job.Status != models.JobReserved {
		return ErrJobNotReserved
	}
	return nil
}

// CanRejectCloseRequest разрешает отклонить только ожидающий запрос на завершение
func CanRejectCloseRequest(job models.Job) error {
	if job.Status == models.JobClosed {
		return ErrJobClosed
	}
	if job.Status != models.JobReserved {
		return ErrJobNotReserved
	}
	if job.CloseRequestedBy == "" {
		return ErrNoCloseRequest
	}
	return nil
}
