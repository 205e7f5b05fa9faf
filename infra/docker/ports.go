package docker

import (
	"net"
	"strconv"
)

// inUse reports whether something already listens on the port. The bind
// probe matches what Docker will attempt when publishing the port, so a
// successful bind here means the later publish will not collide.
func inUse(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return true
	}
	_ = ln.Close()
	return false
}
