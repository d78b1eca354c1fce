package app

import "regexp"

const (
	emailPlaceholder = "[EMAIL REDACTED]"
	phonePlaceholder = "[PHONE REDACTED]"
)

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// Phone shapes, applied in order after the email pass. Placeholders contain
// no digits, so a span replaced by an earlier pattern cannot re-match later.
var phoneRes = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}-\d{4}`),
	regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{4}\b`),
	regexp.MustCompile(`\b\d{10}\b`),
}

// Redact strips emails and phone numbers from review text. Runs before the
// text is persisted or sent to the model.
func Redact(text string) string {
	out := emailRe.ReplaceAllString(text, emailPlaceholder)
	for _, re := range phoneRes {
		out = re.ReplaceAllString(out, phonePlaceholder)
	}
	return out
}
