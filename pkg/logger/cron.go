package logger

// CronLogger adapts Logger to the cron.Logger interface (robfig/cron/v3).
type CronLogger struct {
	l *Logger
}

// Cron returns a cron.Logger backed by this logger
func (l *Logger) Cron() CronLogger {
	return CronLogger{l: l.WithField("component", "cron")}
}

// Info logs routine cron messages at debug level; cron is chatty.
func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.WithFields(pairs(keysAndValues)).Debug(msg)
}

// Error logs cron errors
func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.WithError(err).WithFields(pairs(keysAndValues)).Error(msg)
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
