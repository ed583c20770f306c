package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aira-hq/hubclient/internal/config"
)

// applyOverrides copies explicitly set persistent flags onto cfg. Flags left
// at their defaults never replace values from the environment.
func applyOverrides(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	fs.Visit(func(flag *pflag.Flag) {
		if err != nil {
			return
		}
		val := strings.TrimSpace(flag.Value.String())
		switch flag.Name {
		case "base-url":
			u, perr := url.Parse(val)
			if perr != nil || u.Scheme == "" || u.Host == "" {
				err = fmt.Errorf("invalid --base-url %q (must be an absolute URL)", val)
				return
			}
			cfg.BaseURL = val
		case "log-level":
			cfg.LogLevel = strings.ToLower(val)
		case "token-storage":
			cfg.TokenStorageType = strings.ToLower(val)
		}
	})
	return err
}
