package link

import (
	"fmt"
	"net"
)

// InfoTopic carries node presence announcements and the last will.
const InfoTopic = "/node/info"

// presenceSchema identifies the announcement format to subscribers.
const presenceSchema = "hwstar.ntpclock"

// OnlinePayload is published to InfoTopic once a session is up.
func OnlinePayload(device string, ip net.IP) string {
	addr := "0.0.0.0"
	if v4 := ip.To4(); v4 != nil {
		addr = v4.String()
	}
	return fmt.Sprintf("connstate:online;device:%s;ip4:%s;schema:%s", device, addr, presenceSchema)
}

// OfflinePayload is registered as the session's last will.
func OfflinePayload(device string) string {
	return fmt.Sprintf("connstate:offline;device:%s", device)
}
