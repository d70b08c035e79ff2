// Package logger provides the structured zap logger used across querybridge.
//
// Every package that logs declares its own small Logger interface
// (Info/Debug/Warn/Error/Fatal with an optional error and field maps), and
// *Logger satisfies all of them:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Debug,
//		EnableTracing: true,
//		ServiceName:   "orders",
//	})
//
//	log.Info("Connected", nil, map[string]interface{}{"engine": "pgsql"})
//	log.ErrorWithContext(ctx, "Statement failed", err, nil)
//
// When EnableTracing is set, the *WithContext methods add the trace_id and
// span_id of the span carried by ctx.
//
// Configuration can come from YAML or the environment:
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true
//	LOGGER_SERVICE_NAME=orders
//
// NewNop returns a logger that discards everything; clients and builders use
// it when no logger is injected.
package logger
