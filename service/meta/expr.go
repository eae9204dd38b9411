package meta

import (
	"os"
	"regexp"
)

var envExpr = regexp.MustCompile(`\$\{env\.([A-Za-z0-9_]*)\}`)

// expandEnvExpr replaces ${env.KEY} with the value of environment variable
// KEY, or "" when unset. Malformed expressions are left as they are.
func expandEnvExpr(value string) string {
	return envExpr.ReplaceAllStringFunc(value, func(match string) string {
		key := envExpr.FindStringSubmatch(match)[1]
		if key == "" {
			return ""
		}
		return os.Getenv(key)
	})
}
