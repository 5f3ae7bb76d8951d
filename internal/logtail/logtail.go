package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded JSON log line.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  map[string]any
}

// Parse decodes a JSON log line as written by the logging package.
// Lines that are not JSON objects come back with ok false.
func Parse(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Entry{}, false
	}
	raw := map[string]any{}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return Entry{}, false
	}

	var e Entry
	if v, ok := raw["level"].(string); ok {
		e.Level = strings.ToUpper(v)
	}
	if v, ok := raw["msg"].(string); ok {
		e.Message = v
	}
	if v, ok := raw["logger"].(string); ok {
		e.Logger = v
	}
	if v, ok := raw["ts"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			e.Time = ts
		}
	}
	for _, k := range []string{"level", "msg", "logger", "ts", "caller", "stacktrace"} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		e.Fields = raw
	}
	return e, true
}

// Format renders an entry on one line: "15:04:05 INFO [sync] message key=value".
func Format(e Entry) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(e.Level)
		b.WriteByte(' ')
	}
	if e.Logger != "" {
		b.WriteString("[" + e.Logger + "] ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return strings.TrimRight(b.String(), " ")
}

// FormatLines formats every JSON line and passes other lines through.
func FormatLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if e, ok := Parse(line); ok {
			out[i] = Format(e)
			continue
		}
		out[i] = line
	}
	return out
}
