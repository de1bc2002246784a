package v1

import "net/http"

// Param: значение из тела формы (multipart или urlencoded), иначе из query.
// Форма к этому моменту уже разобрана.
func Param(r *http.Request, name string) string {
	if v := r.PostForm.Get(name); v != "" {
		return v
	}
	return r.URL.Query().Get(name)
}
