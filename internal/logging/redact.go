// Package logging keeps secrets out of logs and reports.
//
// Collaborator output ends up in step errors, which are logged and written
// to the batch report. Collaborators run with the user's environment, so
// their output may echo tokens or keys. Everything that leaves a child
// process passes through Redact first, and the CLI log file is wrapped in a
// RedactingWriter.
package logging

import (
	"io"
	"regexp"
	"strings"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

//nolint:gochecknoglobals // compiled once, read-only
var sensitivePatterns = []*regexp.Regexp{
	// Provider API keys (sk-..., sk-ant-...)
	regexp.MustCompile(`sk-(?:ant-)?[a-zA-Z0-9_-]{20,}`),

	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// key=value style credentials
	regexp.MustCompile(`(?i)(api[_-]?key|secret|password|passwd|token)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// Bearer and authorization headers
	regexp.MustCompile(`(?i)(bearer|authorization:)\s+[a-zA-Z0-9._-]{20,}`),

	// PEM private key headers
	regexp.MustCompile(`-----BEGIN[A-Z ]*PRIVATE KEY-----`),
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// Redact replaces every sensitive match in s with RedactedValue.
func Redact(s string) string {
	for _, pattern := range sensitivePatterns {
		s = pattern.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// Excerpt trims process output to its last max bytes, cut at a line
// boundary where possible, and redacts it. The tail is kept because that is
// where tracebacks and error summaries end up.
func Excerpt(output string, maxBytes int) string {
	output = strings.TrimSpace(output)
	if maxBytes > 0 && len(output) > maxBytes {
		output = output[len(output)-maxBytes:]
		if i := strings.IndexByte(output, '\n'); i >= 0 && i < len(output)-1 {
			output = output[i+1:]
		}
		output = "..." + output
	}
	return Redact(output)
}

// RedactingWriter wraps an io.WriteCloser and redacts everything written
// through it.
type RedactingWriter struct {
	w io.WriteCloser
}

// NewRedactingWriter wraps w.
func NewRedactingWriter(w io.WriteCloser) *RedactingWriter {
	return &RedactingWriter{w: w}
}

// Write redacts p and writes it. It reports len(p) on success so callers
// never see a short write.
func (rw *RedactingWriter) Write(p []byte) (int, error) {
	if _, err := rw.w.Write([]byte(Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the wrapped writer.
func (rw *RedactingWriter) Close() error {
	return rw.w.Close()
}
