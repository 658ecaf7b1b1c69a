package respond

import "regexp"

var (
	// The Anthropic pattern must run before the OpenAI one, it is the more
	// specific of the two.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)

	// Password segment inside a connection DSN.
	dbPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)

	// Discord webhook URLs embed the auth token in the path.
	webhookTokenPattern = regexp.MustCompile(`(discord\.com/api/webhooks/\d+)/[\w-]+`)
)

// SanitizeError masks credentials that may appear in error messages before
// they reach the logs.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = webhookTokenPattern.ReplaceAllString(msg, "$1/****")
	return msg
}
