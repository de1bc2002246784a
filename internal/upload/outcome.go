package upload

import (
	"strings"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// Outcome: итог запроса. Пустой Errors означает успех,
// Stored при этом указывает на созданное вложение.
type Outcome struct {
	Errors []string
	Stored *domain.Attachment
}

func (o Outcome) OK() bool { return len(o.Errors) == 0 }

// Message: nil при успехе, иначе все сообщения через пробел в порядке добавления.
func (o Outcome) Message() *string {
	if o.OK() {
		return nil
	}
	msg := strings.Join(o.Errors, " ")
	return &msg
}

func (o Outcome) Response() domain.UploadResponse {
	if m := o.Message(); m != nil {
		return domain.FailUpload(*m)
	}
	return domain.OkUpload()
}
