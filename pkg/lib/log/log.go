// Package log 提供 go-kad 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，每个组件通过 Logger(component) 获取
// 懒加载 logger。日志级别支持通过环境变量按组件配置：
//   - KAD_LOG_LEVEL: 组件=级别,组件=级别,默认级别
//     示例: routing=debug,warn
//   - KAD_LOG_FORMAT: text 或 json
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ============================================================================
//                              配置
// ============================================================================

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// ComponentLevels 各组件的日志级别
	ComponentLevels map[string]slog.Level

	// JSON 是否使用 JSON 格式
	JSON bool
}

// LevelFor 获取指定组件的日志级别
func (c *Config) LevelFor(component string) slog.Level {
	if level, ok := c.ComponentLevels[component]; ok {
		return level
	}
	return c.DefaultLevel
}

var (
	mu     sync.RWMutex
	output io.Writer = os.Stderr
	config           = ParseConfig(os.Getenv("KAD_LOG_LEVEL"), os.Getenv("KAD_LOG_FORMAT"))
)

// ParseConfig 解析级别与格式配置字符串
//
// 格式: component=level,component=level,defaultLevel
func ParseConfig(levelStr, formatStr string) *Config {
	cfg := &Config{
		DefaultLevel:    slog.LevelInfo,
		ComponentLevels: make(map[string]slog.Level),
		JSON:            strings.EqualFold(formatStr, "json"),
	}

	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, lvl, ok := strings.Cut(part, "="); ok {
			if level, ok := parseLevel(lvl); ok {
				cfg.ComponentLevels[strings.TrimSpace(name)] = level
			}
			continue
		}
		if level, ok := parseLevel(part); ok {
			cfg.DefaultLevel = level
		}
	}
	return cfg
}

// parseLevel 解析日志级别名称
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// SetConfig 替换全局配置
func SetConfig(cfg *Config) {
	mu.Lock()
	config = cfg
	mu.Unlock()
}

// SetOutput 设置日志输出目标
//
// 已创建的 LazyLogger 在下一次调用时即使用新的输出。
//
// 示例：
//
//	file, _ := os.OpenFile("kad.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
//	log.SetOutput(file)
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// SetLevel 设置默认日志级别
func SetLevel(level slog.Level) {
	mu.Lock()
	config.DefaultLevel = level
	mu.Unlock()
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时按当前的输出与级别构造 handler，
// 支持在运行时动态切换日志输出目标。
//
// 使用方式：
//
//	var logger = log.Logger("routing")
//	logger.Info("hello")
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) current() *slog.Logger {
	mu.RLock()
	w := output
	level := config.LevelFor(l.component)
	json := config.JSON
	mu.RUnlock()

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.current().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.current().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.current().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.current().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.current().DebugContext(ctx, msg, args...)
}

// InfoContext 带 context 的 Info 日志
func (l *LazyLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.current().InfoContext(ctx, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.current().With(args...)
}

// Enabled 检查组件是否启用指定级别
func (l *LazyLogger) Enabled(level slog.Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= config.LevelFor(l.component)
}
