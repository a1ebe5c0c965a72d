package logging

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name  string
	level zap.AtomicLevel

	appenders []zapcore.Core
	sugar     *zap.SugaredLogger
}

func newImpl(name string, level Level, appenders ...zapcore.Core) *impl {
	return buildImpl(name, zap.NewAtomicLevelAt(level.AsZap()), appenders)
}

func buildImpl(name string, level zap.AtomicLevel, appenders []zapcore.Core) *impl {
	filtered := make([]zapcore.Core, 0, len(appenders))
	for _, appender := range appenders {
		filtered = append(filtered, &levelFilter{Core: appender, enabler: level})
	}

	// Skip one frame so callers see the line that called into the Logger, not this file.
	sugar := zap.New(zapcore.NewTee(filtered...), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	if name != "" {
		sugar = sugar.Named(name)
	}
	return &impl{name: name, level: level, appenders: appenders, sugar: sugar}
}

// levelFilter gates an appender behind the owning logger's level.
type levelFilter struct {
	zapcore.Core
	enabler zapcore.LevelEnabler
}

func (lf *levelFilter) Enabled(level zapcore.Level) bool {
	return lf.enabler.Enabled(level) && lf.Core.Enabled(level)
}

func (lf *levelFilter) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilter{Core: lf.Core.With(fields), enabler: lf.enabler}
}

func (lf *levelFilter) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !lf.enabler.Enabled(entry.Level) {
		return checked
	}
	return lf.Core.Check(entry, checked)
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	return buildImpl(newName, imp.level, imp.appenders)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	switch imp.level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.InfoLevel:
		return INFO
	case zapcore.WarnLevel:
		return WARN
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel, zapcore.InvalidLevel:
		return ERROR
	default:
		return ERROR
	}
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.sugar
}

func (imp *impl) Sync() error {
	var errs []error
	for _, appender := range imp.appenders {
		if err := appender.Sync(); err != nil {
			errs = append(errs, err)
		}
	}

	return multierr.Combine(errs...)
}

func (imp *impl) Debug(args ...interface{}) {
	imp.sugar.Debug(args...)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.sugar.Debugf(template, args...)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.sugar.Debugw(msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) {
	imp.sugar.Info(args...)
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.sugar.Infof(template, args...)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.sugar.Infow(msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) {
	imp.sugar.Warn(args...)
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.sugar.Warnf(template, args...)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.sugar.Warnw(msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) {
	imp.sugar.Error(args...)
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.sugar.Errorf(template, args...)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.sugar.Errorw(msg, keysAndValues...)
}
