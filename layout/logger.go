package layout

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志记录；Enabled 返回 false，禁用状态下日志近乎零成本。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger 配置本包及 token/pagenum 等下游包共用的日志器。
// 默认静默；传入 nil 恢复静默。可与任意 goroutine 的日志调用并发使用。
//
// 可恢复的数据缺口（缺失书签、缺失页码信息、未知块类型）以 Warn 级别输出。
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志器，供下游包共享配置而不引入循环依赖。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
