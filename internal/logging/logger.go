package logging

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "CAMPROV_LOG_LEVEL"

// ErrUnknownLevel is returned by CheckLevel for names Initialize does not know
var ErrUnknownLevel = errors.New("unknown log level")

// redactedValue replaces secret fields in logged bodies
const redactedValue = "********"

// secretFields are masked wherever they appear in a body or its inner data
// document
var secretFields = []string{"credentials", "password"}

// maxPayloadLog caps how much of a request or response body is logged
const maxPayloadLog = 512

// Initialize creates a new logger with the specified level.
// If level is empty, it checks CAMPROV_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// CheckLevel reports whether level is empty or one of the names Initialize
// maps exactly. Initialize itself falls back to info for anything else.
func CheckLevel(level string) error {
	switch level {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("%w %q (valid: debug, info, warn, error)", ErrUnknownLevel, level)
}

// InitializeFromEnv initializes the logger from the CAMPROV_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until initialized so library use never prints
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogRequest logs an outgoing control request
func LogRequest(address, operation string, body []byte, authenticated bool) {
	Debug("Camera request",
		zap.String("address", address),
		zap.String("operation", operation),
		zap.Bool("authenticated", authenticated),
		zap.Int("length", len(body)),
		zap.String("body", truncate(Redact(body))),
	)
}

// LogResponse logs the outcome of a control request
func LogResponse(address, operation string, statusCode int, body []byte) {
	Debug("Camera response",
		zap.String("address", address),
		zap.String("operation", operation),
		zap.Int("status_code", statusCode),
		zap.Int("length", len(body)),
		zap.String("body", truncate(Redact(body))),
	)
}

// LogReconnectAttempt logs one login attempt of a reconnect cycle
func LogReconnectAttempt(address string, attempt, maxAttempts int) {
	Info("Reconnect attempt",
		zap.String("address", address),
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", maxAttempts),
	)
}

// LogStep logs the outcome of a provisioning step
func LogStep(address, step string, succeeded bool, statusCode int, err error) {
	fields := []zap.Field{
		zap.String("address", address),
		zap.String("step", step),
		zap.Bool("succeeded", succeeded),
		zap.Int("status_code", statusCode),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	if succeeded {
		Info("Provisioning step", fields...)
		return
	}
	Warn("Provisioning step", fields...)
}

// Redact returns a copy of a JSON body with credential and password fields
// masked, at the top level, in a "data" object, and inside a "data" field
// holding a JSON-encoded string. Non-JSON bodies are returned unchanged.
func Redact(body []byte) []byte {
	if !gjson.ValidBytes(body) {
		return body
	}
	out := append([]byte(nil), body...)

	for _, field := range secretFields {
		for _, path := range []string{field, "data." + field} {
			if gjson.GetBytes(out, path).Exists() {
				masked, err := sjson.SetBytes(out, path, redactedValue)
				if err != nil {
					return []byte(redactedValue)
				}
				out = masked
			}
		}
	}

	data := gjson.GetBytes(out, "data")
	if data.Type == gjson.String && gjson.Valid(data.Str) {
		inner := Redact([]byte(data.Str))
		if string(inner) != data.Str {
			masked, err := sjson.SetBytes(out, "data", string(inner))
			if err != nil {
				return []byte(redactedValue)
			}
			out = masked
		}
	}

	return out
}

func truncate(data []byte) string {
	if len(data) > maxPayloadLog {
		return asciiDump(data[:maxPayloadLog]) + "..."
	}
	return asciiDump(data)
}

func asciiDump(data []byte) string {
	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	return string(result)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
