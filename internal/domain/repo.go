package domain

import "context"

// Хранилище пользователей. Отсутствие записи: ErrNotFound.
type UsersRepo interface {
	UserByAPIKey(ctx context.Context, key string) (User, error)
	UserByLogin(ctx context.Context, login string) (User, error)
}

// Проекты, версии и роли
type ProjectsRepo interface {
	ProjectByIdentifier(ctx context.Context, identifier string) (Project, error)
	VersionsOfProject(ctx context.Context, id ProjectID) ([]Version, error)
	RolesForProject(ctx context.Context, user UserID, project ProjectID) ([]Role, error)
}

// Метаданные вложений.
// InsertAttachment возвращает created=false, если запись не создана
// (конфликт по (version_id, filename)), без ошибки.
type AttachmentsRepo interface {
	AttachmentsOfVersion(ctx context.Context, id VersionID) ([]Attachment, error)
	InsertAttachment(ctx context.Context, a Attachment) (out Attachment, created bool, err error)
}

// Проверка пароля против сохранённого хэша
type PasswordChecker interface {
	Verify(plain string, encodedHash string) (bool, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
