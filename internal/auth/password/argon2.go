package password

import (
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// errMalformedHash: в users.pass_hash лежит не argon2id-строка.
// Загрузка в этом случае отклоняется как неверный пароль.
var errMalformedHash = errors.New("password: stored hash is malformed")

var _ domain.PasswordChecker = (*Hasher)(nil)

// Hasher проверяет пароль при входе по логину (поле password запроса на загрузку)
// и выпускает хэши для команды passwd.
type Hasher struct {
	params *argon2id.Params
}

// NewDefault: параметры argon2id.DefaultParams, ими же хэширует passwd.
func NewDefault() *Hasher {
	return &Hasher{params: argon2id.DefaultParams}
}

func New(p *argon2id.Params) *Hasher { return &Hasher{params: p} }

// Hash: значение для колонки users.pass_hash.
func (h *Hasher) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errors.New("password: argon2id params not set")
	}
	if plain == "" {
		return "", errors.New("password: empty password")
	}
	return argon2id.CreateHash(plain, h.params)
}

// Verify: encodedHash берётся из users.pass_hash как есть.
// Пользователь без пароля (пустой хэш) по паролю не входит.
func (h *Hasher) Verify(plain, encodedHash string) (bool, error) {
	if encodedHash == "" {
		return false, nil
	}
	// ошибка сравнения возможна только при разборе сохранённой строки
	ok, err := argon2id.ComparePasswordAndHash(plain, encodedHash)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errMalformedHash, err)
	}
	return ok, nil
}
