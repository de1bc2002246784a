package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type ProjectID = uuid.UUID
type VersionID = uuid.UUID
type RoleID = uuid.UUID
type AttachmentID = uuid.UUID

// Право на управление файлами проекта
const PermManageFiles Permission = "manage_files"

type Permission string

// Пользователь (вызывающая сторона после аутентификации)
type User struct {
	ID        UserID    `json:"id"`
	Login     string    `json:"login"`
	PassHash  []byte    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"created_at"`
}

// Проект ищется по человекочитаемому идентификатору
type Project struct {
	ID         ProjectID `json:"id"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
}

// Версия принадлежит ровно одному проекту
type Version struct {
	ID        VersionID `json:"id"`
	ProjectID ProjectID `json:"project_id"`
	Name      string    `json:"name"`
}

// Роль пользователя в рамках проекта
type Role struct {
	ID          RoleID       `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Allows: есть ли у роли указанное право
func (r Role) Allows(p Permission) bool {
	for _, have := range r.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Вложение: файл, прикреплённый к версии
type Attachment struct {
	ID          AttachmentID `json:"id"`
	VersionID   VersionID    `json:"version_id"`
	AuthorID    UserID       `json:"author_id"`
	Filename    string       `json:"filename"`
	Description string       `json:"description"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	SHA256      []byte       `json:"-"`
	StorageKey  string       `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Новое вложение до сохранения
type NewAttachment struct {
	Version     Version
	Author      User
	Filename    string // уже санитизированное имя
	Description string
	ContentType string
	Content     []byte
}
