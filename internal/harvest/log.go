package harvest

import (
	"fmt"

	"go.uber.org/zap"
)

// Result is the outcome of a harvest or refinement run.
type Result struct {
	Success bool     `json:"success"`
	Log     []string `json:"log"`
}

// Log collects the ordered progress lines of one run. Each line is also
// written to the structured logger.
type Log struct {
	lines  []string
	logger *zap.Logger
}

func newLog(component string, fields ...zap.Field) *Log {
	return &Log{
		logger: zap.L().With(append([]zap.Field{zap.String("component", component)}, fields...)...),
	}
}

// Addf appends a formatted line.
func (l *Log) Addf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.lines = append(l.lines, line)
	l.logger.Info(line)
}

// Lines returns a copy of the lines recorded so far.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Log) result(success bool) Result {
	return Result{Success: success, Log: l.Lines()}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
