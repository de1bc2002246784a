package domain

import (
	"regexp"
)

var (
	// всё до последнего разделителя пути (/ или \) включительно,
	// переводы строк тоже (флаг s)
	pathPrefixRe = regexp.MustCompile(`(?s)^.*[\\/]`)
	// \w в RE2: только ASCII [0-9A-Za-z_]
	unsafeNameRe = regexp.MustCompile(`[^\w.\-]`)
)

// SanitizeFilename приводит клиентское имя файла к ключу хранения:
// отрезает путь и заменяет недопустимые символы на '_'.
// Идемпотентна: SanitizeFilename(SanitizeFilename(s)) == SanitizeFilename(s).
func SanitizeFilename(name string) string {
	name = pathPrefixRe.ReplaceAllString(name, "")
	return unsafeNameRe.ReplaceAllString(name, "_")
}
