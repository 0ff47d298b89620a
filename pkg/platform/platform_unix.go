//go:build unix

package platform

var caps = Capabilities{
	FDTransfer:  true,
	UnixSockets: true,
}
