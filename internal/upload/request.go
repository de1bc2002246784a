package upload

// Request: разобранные транспортом параметры одной загрузки.
// Пустая строка считается отсутствующим значением.
type Request struct {
	APIKey    string
	User      string
	Password  string
	Project   string
	VersionID string
	File      *File
}

// File: содержимое и исходное имя файла от клиента
type File struct {
	Name        string
	ContentType string
	Content     []byte
}
