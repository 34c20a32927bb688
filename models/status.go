package models

import (
	"encoding/json"
	"fmt"
)

// JobStatus задаёт статус задания. Канонические значения: open, reserved, closed.
// Сервер исторически отдаёт также accepted и completed; при декодировании
// они приводятся к reserved и closed, любая другая строка считается ошибкой.
type JobStatus string

const (
	JobOpen     JobStatus = "open"
	JobReserved JobStatus = "reserved"
	JobClosed   JobStatus = "closed"
)

// ParseJobStatus нормализует строку статуса задания
func ParseJobStatus(s string) (JobStatus, error) {
	switch s {
	case "open":
		return JobOpen, nil
	case "reserved", "accepted":
		return JobReserved, nil
	case "closed", "completed":
		return JobClosed, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseJobStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// OfferStatus задаёт статус предложения
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// ParseOfferStatus проверяет строку статуса предложения
func ParseOfferStatus(s string) (OfferStatus, error) {
	switch s {
	case "pending":
		return OfferPending, nil
	case "accepted":
		return OfferAccepted, nil
	case "rejected":
		return OfferRejected, nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

func (s *OfferStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOfferStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Role задаёт роль пользователя, неизменяемую после регистрации
type Role string

const (
	RoleClient Role = "client"
	RoleLabour Role = "labour"
)

// ParseRole проверяет строку роли
func ParseRole(s string) (Role, error) {
	switch s {
	case "client":
		return RoleClient, nil
	case "labour":
		return RoleLabour, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
