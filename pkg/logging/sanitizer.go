package logging

import (
	"regexp"
)

const (
	// MaxQuestionLogLength is the maximum length of a user question to log.
	MaxQuestionLogLength = 200
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
)

var (
	// Matches password values in connection strings: password=xxx, pwd=xxx.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches API keys in query strings or error text.
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// Matches user:pass@host credentials embedded in URLs.
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)
)

// TruncateQuestion shortens a question for logging. Full question text never
// needs to appear in logs; the prefix is enough to correlate.
func TruncateQuestion(q string) string {
	if len(q) <= MaxQuestionLogLength {
		return q
	}
	return q[:MaxQuestionLogLength] + "..."
}

// SanitizeError strips credentials from error text before logging. Errors
// from the database layer or LLM providers can echo connection strings back.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	s = passwordPattern.ReplaceAllString(s, "${1}="+RedactedText)
	s = apiKeyPattern.ReplaceAllString(s, "${1}="+RedactedText)
	s = connStringPattern.ReplaceAllString(s, "://"+RedactedText+"@"+RedactedText)
	return s
}
