// Package protocol decodes raw packets into the flow records the scoring
// pipeline consumes.
package protocol

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"FlowSentry/internal/model"
)

// ParsePacket uses gopacket to decode a raw packet and derive a flow
// record from it. The destination port becomes the flow's port and the
// frame length its byte count. Non-IPv4 and non-TCP/UDP/ICMP packets are
// rejected.
func ParsePacket(data []byte) (*model.FlowRecord, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	timestamp := time.Now()
	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		timestamp = meta.Timestamp
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, fmt.Errorf("not an IPv4 packet")
	}
	ip := l.(*layers.IPv4)

	flow := &model.FlowRecord{
		SourceIP:  ip.SrcIP.String(),
		DestIP:    ip.DstIP.String(),
		Bytes:     int64(len(data)),
		Timestamp: timestamp.Format(time.RFC3339),
	}

	switch {
	case packet.Layer(layers.LayerTypeTCP) != nil:
		tcp := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
		flow.Protocol = "TCP"
		flow.Port = int(tcp.DstPort)
	case packet.Layer(layers.LayerTypeUDP) != nil:
		udp := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		flow.Protocol = "UDP"
		flow.Port = int(udp.DstPort)
	case packet.Layer(layers.LayerTypeICMPv4) != nil:
		flow.Protocol = "ICMP"
	default:
		return nil, fmt.Errorf("not a TCP, UDP or ICMP packet")
	}

	return flow, nil
}
