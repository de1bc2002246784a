package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// Credentials: один из двух способов аутентификации.
// Выбирается один раз из запроса: APIKey либо Password.
type Credentials interface {
	resolve(ctx context.Context, s *Service, errs *ErrorList) (domain.User, bool, error)
}

type APIKey struct {
	Token string
}

type Password struct {
	Login    string
	Password string
}

// CredentialsFrom возвращает nil, если не передан ни ключ, ни логин.
// API-ключ имеет приоритет: логин и пароль при нём игнорируются.
func CredentialsFrom(req Request) Credentials {
	switch {
	case req.APIKey != "":
		return APIKey{Token: req.APIKey}
	case req.User != "":
		return Password{Login: req.User, Password: req.Password}
	default:
		return nil
	}
}

func (c APIKey) resolve(ctx context.Context, s *Service, errs *ErrorList) (domain.User, bool, error) {
	u, err := s.users.UserByAPIKey(ctx, c.Token)
	if errors.Is(err, domain.ErrNotFound) {
		errs.Add(MsgBadAPIKey)
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("user by api key: %w", err)
	}
	return u, true, nil
}

func (c Password) resolve(ctx context.Context, s *Service, errs *ErrorList) (domain.User, bool, error) {
	u, err := s.users.UserByLogin(ctx, c.Login)
	if errors.Is(err, domain.ErrNotFound) {
		errs.Add(MsgBadUser)
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("user by login: %w", err)
	}

	ok, err := s.passwords.Verify(c.Password, string(u.PassHash))
	if err != nil {
		// битый хэш в базе: для клиента это тот же неверный пароль
		s.log.Warn().Err(err).Str("login", u.Login).Msg("password hash verify failed")
	}
	if err != nil || !ok {
		errs.Add(MsgBadPassword)
		return domain.User{}, false, nil
	}
	return u, true, nil
}
