package apiclient

import (
	"os"
	"strings"
)

// buildMode is set at link time:
//
//	go build -ldflags "-X github.com/aira-hq/hubclient/pkg/apiclient.buildMode=development"
var buildMode string

// DevModeEnv is the environment variable consulted by DetectDevMode.
const DevModeEnv = "APP_ENV"

// DetectDevMode reports whether verbose request logging should be on: the
// binary was built in development mode, or APP_ENV is anything but
// "production" (unset counts as development).
func DetectDevMode() bool {
	if strings.EqualFold(buildMode, "development") {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(os.Getenv(DevModeEnv)), "production")
}
