package logging

import (
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestLogFormatter(t *testing.T) {
	t.Parallel()

	entry := &log.Entry{
		Time:    time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Level:   log.InfoLevel,
		Message: "publish task created\n",
		Data: log.Fields{
			"operation": "task.add",
			"task_id":   "T1",
			"ignored":   "should not print",
		},
	}

	out, err := (&LogFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	line := string(out)

	if !strings.Contains(line, "[2026-03-14 10:30:00]") {
		t.Errorf("missing timestamp: %q", line)
	}
	if !strings.Contains(line, "publish task created") {
		t.Errorf("missing message: %q", line)
	}
	if !strings.Contains(line, "operation=task.add") || !strings.Contains(line, "task_id=T1") {
		t.Errorf("missing ordered fields: %q", line)
	}
	if strings.Contains(line, "ignored") {
		t.Errorf("unlisted field should not print: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("line should end with newline: %q", line)
	}
}

func TestLogFormatterWarnLevel(t *testing.T) {
	t.Parallel()

	entry := &log.Entry{
		Time:    time.Now(),
		Level:   log.WarnLevel,
		Message: "m",
	}
	out, err := (&LogFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(string(out), "[warn ]") {
		t.Errorf("warning level should render as warn: %q", string(out))
	}
}
