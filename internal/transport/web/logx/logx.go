package logx

import "github.com/rs/zerolog"

// kv: пары ключ/значение: "key", value, ...

func Info(l zerolog.Logger, reqID, op, msg string, kv ...any) {
	l.Info().Str("req_id", reqID).Str("op", op).Fields(kv).Msg(msg)
}

func Warn(l zerolog.Logger, reqID, op, msg string, kv ...any) {
	l.Warn().Str("req_id", reqID).Str("op", op).Fields(kv).Msg(msg)
}

func Error(l zerolog.Logger, reqID, op, msg string, err error, kv ...any) {
	l.Error().Err(err).Str("req_id", reqID).Str("op", op).Fields(kv).Msg(msg)
}
