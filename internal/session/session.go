package session

import "github.com/michaelberns/wtt/models"

// Session хранит явную сессию текущего пользователя. Создаётся при входе,
// уничтожается при выходе и передаётся во все проверки прав и вызовы API;
// глобального состояния нет.
type Session struct {
	UserID string
	Name   string
	Email  string
	Role   models.Role
}

// FromUser создаёт сессию по данным пользователя, вернувшимся с сервера
func FromUser(u models.User) Session {
	return Session{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// Active сообщает, выполнен ли вход
func (s Session) Active() bool {
	return s.UserID != ""
}
