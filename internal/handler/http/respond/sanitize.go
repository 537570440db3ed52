package respond

import (
	"regexp"
)

var (
	// 内部エラーのログに機密情報を残さないためのマスクパターン
	dbPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)
	secretKeyPattern  = regexp.MustCompile(`(secret[_-]?key|merchant[_-]?key)=\S+`)
	bearerPattern     = regexp.MustCompile(`Bearer [A-Za-z0-9._-]+`)
)

// SanitizeError returns the error message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = secretKeyPattern.ReplaceAllString(msg, "$1=****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")

	return msg
}
