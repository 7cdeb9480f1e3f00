// Package redact removes credentials and filesystem details from strings
// before they are logged or shown to a user. Database errors in particular
// tend to echo connection strings and file paths back to the caller.
package redact

import (
	"net/url"
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"

	maskedPassword = "****"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

var (
	// scheme://user:password@ in connection URLs
	urlCredentialRegex = regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^/@\s:]+:[^/@\s]+@`)

	// password=... in keyword/value DSNs and query strings
	passwordRegex = regexp.MustCompile(`(?i)\b(password|passwd|pwd)=[^&\s]+`)

	// absolute unix paths with at least two segments
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	rules = []rule{
		{urlCredentialRegex, "${1}" + RedactedCredentialPlaceholder + "@"},
		{passwordRegex, "${1}=" + RedactionPlaceholder},
		{unixPathRegex, RedactedPathPlaceholder},
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// DSN masks the password of a database connection string while keeping the
// rest readable, so it can be logged. URL-style DSNs keep their user name;
// keyword/value DSNs lose only the password value. File paths are left
// alone since a SQLite path is not a secret.
func DSN(raw string) string {
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), maskedPassword)
		}
		return u.String()
	}
	return passwordRegex.ReplaceAllString(raw, "${1}="+RedactionPlaceholder)
}
