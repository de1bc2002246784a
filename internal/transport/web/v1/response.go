package v1

import (
	"encoding/json"
	"net/http"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// Сообщение для сбоев, детали которых клиенту не показываем
const MsgInternal = "Internal server error."

// WriteJSON пишет тело как JSON; для HEAD: без тела
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func WriteUpload(w http.ResponseWriter, r *http.Request, status int, resp domain.UploadResponse) {
	WriteJSON(w, r, status, resp)
}

func WriteUploadError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteUpload(w, r, status, domain.FailUpload(msg))
}
