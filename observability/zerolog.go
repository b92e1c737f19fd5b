package observability

import "github.com/rs/zerolog"

// NewZerolog adapts a zerolog.Logger to the Logger interface.
func NewZerolog(l zerolog.Logger) Logger { return zerologLogger{l: l} }

type zerologLogger struct {
	l zerolog.Logger
}

func (z zerologLogger) Debug(msg string, fields ...Field) { emit(z.l.Debug(), msg, fields) }
func (z zerologLogger) Info(msg string, fields ...Field)  { emit(z.l.Info(), msg, fields) }
func (z zerologLogger) Warn(msg string, fields ...Field)  { emit(z.l.Warn(), msg, fields) }
func (z zerologLogger) Error(msg string, fields ...Field) { emit(z.l.Error(), msg, fields) }

func (z zerologLogger) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key(), f.Value())
	}
	return zerologLogger{l: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		if err, ok := f.Value().(error); ok {
			ev = ev.AnErr(f.Key(), err)
			continue
		}
		ev = ev.Interface(f.Key(), f.Value())
	}
	ev.Msg(msg)
}
