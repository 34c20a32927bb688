package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReachError означает, что сеть недоступна и запрос не дошёл до сервера.
// В тексте указывается базовый адрес API для диагностики.
type ReachError struct {
	BaseURL string
	Err     error
}

func (e *ReachError) Error() string {
	return fmt.Sprintf("cannot reach API at %s: %v", e.BaseURL, e.Err)
}

func (e *ReachError) Unwrap() error { return e.Err }

// StatusError означает ответ сервера со статусом вне 2xx
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	// Сервер может вернуть {"error": "..."} либо простой текст
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal([]byte(e.Body), &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// DecodeError означает пустой или некорректный ответ там, где
// ожидалась сущность. Форма ответа не угадывается: декодирование строгое.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response from server: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
