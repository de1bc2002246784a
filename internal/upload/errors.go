package upload

import "strings"

// Сообщения, которые уходят клиенту как есть
const (
	MsgNoCredentials     = "Neither API key nor user name specified."
	MsgNoPassword        = "User password is not specified."
	MsgNoProject         = "Project identifier is not specified."
	MsgNoVersion         = "Version identifier is not specified."
	MsgNoFile            = "The file to store is not sent."
	MsgBadAPIKey         = "API key is invalid."
	MsgBadUser           = "User name is invalid."
	MsgBadPassword       = "Incorrect username/password."
	MsgBadProject        = "Project name is invalid."
	MsgBadVersion        = "Version ID is invalid or does not belong to project specified."
	MsgNoPermission      = "No permissions to manage files."
	MsgFileExists        = "The file already exists."
	MsgNotSaved          = "File was not saved."
	msgCannotStoreFormat = "Cannot store file: %s."
)

// ErrorList: упорядоченный журнал ошибок одного запроса, только на добавление.
type ErrorList struct {
	msgs []string
}

func (l *ErrorList) Add(msg string) { l.msgs = append(l.msgs, msg) }

func (l *ErrorList) Empty() bool { return len(l.msgs) == 0 }

// Messages возвращает копию накопленных сообщений
func (l *ErrorList) Messages() []string {
	out := make([]string, len(l.msgs))
	copy(out, l.msgs)
	return out
}

func (l *ErrorList) String() string { return strings.Join(l.msgs, " ") }
