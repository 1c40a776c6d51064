package storage

import (
	"CitibikeDashboard/src/config"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel 定义日志级别类型
type LogLevel int

// 日志级别常量定义
const (
	DEBUG   LogLevel = iota // 调试信息
	INFO                    // 普通信息
	WARNING                 // 警告信息
	ERROR                   // 错误信息
	FATAL                   // 致命错误(只记录, 不退出进程)
)

// Logger 日志记录器结构体
// 文件中写JSON行, 终端写可读格式, 订阅者收到 "[时间] 级别: 消息"
type Logger struct {
	zl          *zap.Logger
	file        *zap.Logger // 只写文件, 不输出到终端
	level       zap.AtomicLevel
	sink        *fileSink
	mu          sync.Mutex    // 保护订阅者列表
	subscribers []chan string // 订阅者通道列表
}

// fileSink 可重新打开的日志文件
type fileSink struct {
	mu       sync.Mutex
	filename string
	file     *os.File
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return len(p), nil
	}
	return s.file.Write(p)
}

func (s *fileSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

func (s *fileSink) size() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return 0, nil
	}
	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// reopen 关闭旧文件并打开filename, rotateTo不为空时先把旧文件改名
func (s *fileSink) reopen(filename, rotateTo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
	if rotateTo != "" {
		if err := os.Rename(s.filename, rotateTo); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	file, err := openLogFile(filename)
	if err != nil {
		return err
	}
	s.file = file
	s.filename = filename
	return nil
}

func (s *fileSink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func openLogFile(filename string) (*os.File, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// NewLogger 创建新的日志记录器
// 参数:
//
//	filename: 日志文件路径, 为空时只输出到终端
//	level: 最低日志级别(debug/info/warn/error), 无法识别时使用info
//
// 返回值:
//
//	*Logger: 日志记录器实例
//	error: 创建过程中的错误
func NewLogger(filename, level string) (*Logger, error) {
	sink := &fileSink{filename: filename}
	if filename != "" {
		file, err := openLogFile(filename)
		if err != nil {
			return nil, err
		}
		sink.file = file
	}

	var lvl zapcore.Level
	if err := lvl.Set(strings.ToLower(strings.TrimSpace(level))); err != nil {
		lvl = zapcore.InfoLevel
	}
	atom := zap.NewAtomicLevelAt(lvl)

	l := &Logger{level: atom, sink: sink}

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(sink), atom)
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), atom)

	l.zl = zap.New(zapcore.NewTee(fileCore, consoleCore), zap.Hooks(l.publish))
	l.file = zap.New(fileCore, zap.Hooks(l.publish))
	return l, nil
}

// NewNopLogger 不输出任何内容, 测试中使用
func NewNopLogger() *Logger {
	return &Logger{zl: zap.NewNop(), file: zap.NewNop(), level: zap.NewAtomicLevel(), sink: &fileSink{}}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// publish 通知所有订阅者, 通道已满则跳过
func (l *Logger) publish(e zapcore.Entry) error {
	entry := fmt.Sprintf("[%s] %s: %s",
		e.Time.Format("2006-01-02 15:04:05"),
		e.Level.CapitalString(),
		e.Message)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subscribers {
		select {
		case ch <- entry:
		default:
		}
	}
	return nil
}

// Close 刷新缓冲并关闭日志文件
func (l *Logger) Close() error {
	_ = l.zl.Sync()
	_ = l.file.Sync()
	return l.sink.close()
}

// Reopen 重新打开一个文件
// 参数：
// filename：新文件的路径
// 返回值：
// error：重建文件时的错误
func (l *Logger) Reopen(filename string) error {
	return l.sink.reopen(filename, "")
}

// Log 记录日志方法
// 参数:
//
//	level: 日志级别
//	message: 日志消息内容
//	fields: 结构化字段
func (l *Logger) Log(level LogLevel, message string, fields ...zap.Field) {
	write(l.zl, level, message, fields)
}

// Record 只写日志文件和订阅者, 终端没有输出
// 用于调用方自己向终端报告的消息, 避免同一条错误打印两次
func (l *Logger) Record(level LogLevel, message string, fields ...zap.Field) {
	write(l.file, level, message, fields)
}

func write(zl *zap.Logger, level LogLevel, message string, fields []zap.Field) {
	switch level {
	case DEBUG:
		zl.Debug(message, fields...)
	case INFO:
		zl.Info(message, fields...)
	case WARNING:
		zl.Warn(message, fields...)
	case FATAL:
		zl.Error(message, append(fields, zap.Bool("fatal", true))...)
	default:
		zl.Error(message, fields...)
	}
}

// CheckRotate 日志文件超过配置大小时轮转
func (l *Logger) CheckRotate(cfg *config.Config) {
	size, err := l.sink.size()
	if err != nil {
		l.Error("读取日志文件大小失败", zap.Error(err))
		return
	}

	if limit := eval(cfg.LogMaxSize); limit > 0 && size > limit {
		if err := l.rotateLog(); err != nil {
			l.Error("日志轮转失败", zap.Error(err))
		}
	}
}

// rotateLog 把当前文件改名为 name.时间戳.ext 后重新打开
func (l *Logger) rotateLog() error {
	name := l.sink.filename
	if name == "" {
		return nil
	}
	ext := filepath.Ext(name)
	rotated := fmt.Sprintf("%s.%s%s", strings.TrimSuffix(name, ext), time.Now().Format("20060102150405"), ext)
	return l.sink.reopen(name, rotated)
}

// Subscribe 订阅日志消息
// 返回值:
//
//	<-chan string: 只读通道，用于接收日志消息
func (l *Logger) Subscribe() <-chan string {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 创建带缓冲的通道(容量100)
	ch := make(chan string, 100)
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// Unsubscribe 移除并关闭订阅通道
func (l *Logger) Unsubscribe(ch <-chan string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, c := range l.subscribers {
		if c == ch {
			l.subscribers = append(l.subscribers[:i], l.subscribers[i+1:]...)
			close(c)
			return
		}
	}
}

// String 实现LogLevel的String方法
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// eval 计算 "10 * 1024 * 1024" 形式的大小表达式, 无法解析时返回0
func eval(expr string) int64 {
	if strings.TrimSpace(expr) == "" {
		return 0
	}
	parts := strings.Split(expr, "*")
	var result int64 = 1
	for _, part := range parts {
		num, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0
		}
		result *= num
	}
	return result
}

// 以下是快捷日志方法
func (l *Logger) Debug(msg string, fields ...zap.Field)   { l.Log(DEBUG, msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)    { l.Log(INFO, msg, fields...) }
func (l *Logger) Warning(msg string, fields ...zap.Field) { l.Log(WARNING, msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field)   { l.Log(ERROR, msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field)   { l.Log(FATAL, msg, fields...) }
