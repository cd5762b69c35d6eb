package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/yungbote/quizprep-backend/internal/platform/envutil"
)

// ClientOptionsFromEnv returns credentials from GOOGLE_APPLICATION_CREDENTIALS_JSON
// (inline JSON) or GOOGLE_APPLICATION_CREDENTIALS (inline JSON or a file
// path). No options means application default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""))
	if creds == "" {
		creds = strings.TrimSpace(envutil.String("GOOGLE_APPLICATION_CREDENTIALS", ""))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
