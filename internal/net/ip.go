package net

import (
	"net"
	"strconv"

	"LeapPaint/internal/stroke"
)

// OutgoingIP finds the local address viewers on the LAN can reach.
func OutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route out; look at the interfaces instead.
		return localIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

func localIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	stroke.Logger().Warn("no LAN address found; using loopback", "component", "bridge")
	return "127.0.0.1", nil
}

// BridgeURL returns the websocket URL viewers use to reach a bridge on port.
func BridgeURL(host string, port int) string {
	return "ws://" + net.JoinHostPort(host, strconv.Itoa(port)) + StrokesPath
}
