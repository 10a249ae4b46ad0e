package clog

// Logger 日志接口，提供结构化日志记录功能
//
// 支持五个日志级别：Debug、Info、Warn、Error、Fatal
//
// 基本使用：
//
//	logger.Info("Hello, World", clog.String("key", "value"))
//
// 创建子 Logger：
//
//	childLogger := logger.With(clog.String("module", "api"))
//	namespacedLogger := logger.WithNamespace("number", "allocator")
type Logger interface {
	// 基础日志级别方法
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With 创建一个带有预设字段的子 Logger
	//
	// 预设的字段会出现在所有日志中。
	With(fields ...Field) Logger

	// WithNamespace 创建一个扩展命名空间的子 Logger
	//
	// 命名空间会追加到现有的命名空间后面，以 "." 连接。
	WithNamespace(parts ...string) Logger

	// SetLevel 动态调整日志级别
	//
	// 允许运行时修改日志级别，不需要重新创建 Logger。
	SetLevel(level Level) error

	// Flush 强制同步所有缓冲区的日志
	Flush()
}
