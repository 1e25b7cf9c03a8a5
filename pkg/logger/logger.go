package logger

import (
	"io"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"StreakKeeper/config"
)

var (
	// Logger 在 Init 之前是 no-op，测试中无需初始化
	Logger   = zap.NewNop()
	logClose io.Closer
)

// level 同一个日志级别在 zap 和 hlog 两侧的取值
type level struct {
	zap  zapcore.Level
	hlog hlog.Level
}

var levels = map[string]level{
	"DEBUG":   {zapcore.DebugLevel, hlog.LevelDebug},
	"INFO":    {zapcore.InfoLevel, hlog.LevelInfo},
	"WARN":    {zapcore.WarnLevel, hlog.LevelWarn},
	"WARNING": {zapcore.WarnLevel, hlog.LevelWarn},
	"ERROR":   {zapcore.ErrorLevel, hlog.LevelError},
}

// parseLevel 未知级别按 INFO 处理
func parseLevel(name string) level {
	if l, ok := levels[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return l
	}
	return levels["INFO"]
}

// Init 按配置构建 zap logger，同时替换 hertz 的 hlog。
// 每条日志都带 service 和打卡时区，排查跨天问题时不必再查配置。
func Init() {
	cfg := config.Cfg
	lvl := parseLevel(cfg.LoggerLevel)

	ws, closer, fallback := openOutput(cfg.LoggerOutputPath)
	logClose = closer

	hzLogger := hertzzap.NewLogger(
		hertzzap.WithCoreEnc(buildEncoder(cfg.LoggerFormat, cfg.IsDevelopment())),
		hertzzap.WithCoreWs(ws),
		hertzzap.WithCoreLevel(zap.NewAtomicLevelAt(lvl.zap)),
		hertzzap.WithZapOptions(
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
	)
	hlog.SetLogger(hzLogger)
	hlog.SetLevel(lvl.hlog)

	Logger = hzLogger.Logger().With(
		zap.String("service", cfg.ServiceName),
		zap.String("timezone", cfg.Timezone),
	)
	if fallback != nil {
		Logger.Warn("Cannot open log file, writing to stdout",
			zap.String("path", cfg.LoggerOutputPath),
			zap.Error(fallback),
		)
	}
	Logger.Info("Logger initialized",
		zap.String("level", lvl.zap.CapitalString()),
		zap.String("format", cfg.LoggerFormat),
		zap.String("environment", cfg.Environment),
	)
}

func Sync() {
	_ = Logger.Sync()

	if logClose != nil {
		_ = logClose.Close()
		logClose = nil
	}
}

// buildEncoder 开发环境或 text 格式输出彩色控制台日志，其余输出 JSON
func buildEncoder(format string, development bool) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if development || strings.EqualFold(format, "text") {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

// openOutput 支持 stdout、stderr 和文件路径；文件打不开时退回 stdout 并返回原因
func openOutput(path string) (zapcore.WriteSyncer, io.Closer, error) {
	switch strings.ToLower(path) {
	case "", "stdout":
		return zapcore.AddSync(os.Stdout), nil, nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zapcore.AddSync(os.Stdout), nil, err
	}
	return zapcore.AddSync(file), file, nil
}
