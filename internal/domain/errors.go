package domain

import "errors"

// Ошибки инфраструктурного уровня. Ошибки валидации загрузки сюда не относятся:
// они копятся строками в upload.ErrorList.
var ErrNotFound = errors.New("not_found")
