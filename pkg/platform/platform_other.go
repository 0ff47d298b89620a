//go:build !unix

package platform

var caps = Capabilities{}
