// Package environment maps 9Pay environment names to API base URLs.
package environment

import "strings"

const (
	Sandbox    = "SANDBOX"
	Production = "PRODUCTION"

	SandboxURL    = "https://sand-payment.9pay.vn"
	ProductionURL = "https://payment.9pay.vn"
)

// Endpoint resolves env case-insensitively. Unknown or empty names resolve to
// the sandbox so a typo can never point traffic at production.
func Endpoint(env string) string {
	switch strings.ToUpper(strings.TrimSpace(env)) {
	case Production:
		return ProductionURL
	default:
		return SandboxURL
	}
}

func IsProduction(env string) bool {
	return Endpoint(env) == ProductionURL
}
