package domain

// Ответ на загрузку: пустое (null) сообщение: успех.
type UploadResponse struct {
	ErrorMessage *string `json:"errorMessage"`
}

func OkUpload() UploadResponse { return UploadResponse{} }
func FailUpload(msg string) UploadResponse {
	return UploadResponse{ErrorMessage: &msg}
}
