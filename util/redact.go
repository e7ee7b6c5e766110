package util

import (
	"net/url"
	"regexp"
)

var dsnPassword = regexp.MustCompile(`(?i)(password=)('[^']*'|\S+)`)

// RedactDSN hides the password in a connection string. URL-style DSNs keep
// their user, host and path; key=value DSNs lose only the password value.
func RedactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	return dsnPassword.ReplaceAllString(dsn, "${1}xxxxx")
}
