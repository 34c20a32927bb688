// Package policy содержит чистые предикаты прав доступа.
// Они управляют только видимостью действий на клиенте: сервер
// проверяет права повторно, и успешный предикат никогда не заменяет
// успешный авторизованный ответ сервера.
package policy

import (
	"github.com/michaelberns/wtt/internal/session"
	"github.com/michaelberns/wtt/models"
)

// IsCreator сообщает, является ли вошедший пользователь создателем задания
func IsCreator(s session.Session, job models.Job) bool {
	return s.Active() && s.UserID == job.CreatedBy
}

// CanEditJob разрешает редактирование задания только создателю
func CanEditJob(s session.Session, job models.Job) bool {
	return IsCreator(s, job)
}

// CanDeleteJob разрешает удаление задания только создателю
func CanDeleteJob(s session.Session, job models.Job) bool {
	return IsCreator(s, job)
}

// CanManageOffers разрешает принимать и отклонять предложения только создателю
func CanManageOffers(s session.Session, job models.Job) bool {
	return IsCreator(s, job)
}

// CanCreateOffer разрешает подачу предложений только исполнителям (роль labour)
func CanCreateOffer(s session.Session) bool {
	return s.Active() && s.Role == models.RoleLabour
}

// CanPostJob разрешает публикацию заданий только заказчикам (роль client)
func CanPostJob(s session.Session) bool {
	return s.Active() && s.Role == models.RoleClient
}

// CanRequestClose разрешает запрос завершения только принятому исполнителю задания
func CanRequestClose(s session.Session, job models.Job) bool {
	return s.Active() && job.AcceptedBy != "" && s.UserID == job.AcceptedBy
}
