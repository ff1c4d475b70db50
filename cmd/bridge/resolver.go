package main

import (
	"os"
	"strings"
)

// envResolver implements datasource.Resolver by reading connection
// coordinates from the process environment, the same mechanism the
// original bridge's SRV-style variable substitution ultimately bottoms
// out on in a container environment. A bare name resolves to
// $BRIDGE_<NAME>; a "host:name" or "port:name" prefixed placeholder
// splits that value on the first colon.
type envResolver struct{}

func (envResolver) Resolve(placeholder string) string {
	kind, name, hasKind := strings.Cut(placeholder, ":")
	if !hasKind {
		name = placeholder
		kind = ""
	}
	val, ok := os.LookupEnv("BRIDGE_" + strings.ToUpper(name))
	if !ok {
		return ""
	}
	if kind == "" {
		return val
	}
	host, port, found := strings.Cut(val, ":")
	if !found {
		return val
	}
	if kind == "port" {
		return port
	}
	return host
}
