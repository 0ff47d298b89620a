// Package platform reports which OS facilities the process can rely on.
// Capabilities are resolved once at build time and injected into the
// packages that need them instead of being probed ad hoc.
package platform

// Capabilities describes the platform features relevant to local IPC.
type Capabilities struct {
	FDTransfer  bool // descriptor passing via SCM_RIGHTS over unix sockets
	UnixSockets bool // unix domain stream sockets as a listener family
}

// Get returns the capabilities of the running platform.
func Get() Capabilities {
	return caps
}
