package middleware

import "github.com/aretw0/waypoint/pkg/ports"

// Middleware allows wrapping a Host to add behavior.
type Middleware func(ports.Host) ports.Host

// Wrap applies mws to host. The first middleware is the outermost one.
func Wrap(host ports.Host, mws ...Middleware) ports.Host {
	for i := len(mws) - 1; i >= 0; i-- {
		host = mws[i](host)
	}
	return host
}
