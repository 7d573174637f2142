package protocol

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// buildPacket serializes an Ethernet/IPv4 frame with the given transport
// layer so the parser can be tested without capture files.
func buildPacket(t *testing.T, transport gopacket.SerializableLayer, payload []byte) []byte {
	t.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version: 4,
		TTL:     64,
		SrcIP:   net.IP{192, 168, 1, 10},
		DstIP:   net.IP{10, 0, 0, 5},
	}

	switch l := transport.(type) {
	case *layers.TCP:
		ip.Protocol = layers.IPProtocolTCP
		l.SetNetworkLayerForChecksum(ip)
	case *layers.UDP:
		ip.Protocol = layers.IPProtocolUDP
		l.SetNetworkLayerForChecksum(ip)
	case *layers.ICMPv4:
		ip.Protocol = layers.IPProtocolICMPv4
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, transport, gopacket.Payload(payload)); err != nil {
		t.Fatalf("Failed to serialize packet: %v", err)
	}
	return buf.Bytes()
}

func TestParsePacketTCP(t *testing.T) {
	data := buildPacket(t, &layers.TCP{SrcPort: 50123, DstPort: 443, SYN: true}, nil)

	flow, err := ParsePacket(data)
	if err != nil {
		t.Fatalf("ParsePacket failed: %v", err)
	}
	if flow.SourceIP != "192.168.1.10" || flow.DestIP != "10.0.0.5" {
		t.Errorf("Addresses wrong: %s -> %s", flow.SourceIP, flow.DestIP)
	}
	if flow.Protocol != "TCP" {
		t.Errorf("Expected protocol TCP, got %s", flow.Protocol)
	}
	if flow.Port != 443 {
		t.Errorf("Expected destination port 443, got %d", flow.Port)
	}
	if flow.Bytes != int64(len(data)) {
		t.Errorf("Expected %d bytes, got %d", len(data), flow.Bytes)
	}
	if flow.Timestamp == "" {
		t.Error("Timestamp should be set")
	}
}

func TestParsePacketUDP(t *testing.T) {
	data := buildPacket(t, &layers.UDP{SrcPort: 40000, DstPort: 53}, []byte("query"))

	flow, err := ParsePacket(data)
	if err != nil {
		t.Fatalf("ParsePacket failed: %v", err)
	}
	if flow.Protocol != "UDP" || flow.Port != 53 {
		t.Errorf("Expected UDP/53, got %s/%d", flow.Protocol, flow.Port)
	}
}

func TestParsePacketICMP(t *testing.T) {
	icmp := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0)}
	data := buildPacket(t, icmp, []byte("ping"))

	flow, err := ParsePacket(data)
	if err != nil {
		t.Fatalf("ParsePacket failed: %v", err)
	}
	if flow.Protocol != "ICMP" {
		t.Errorf("Expected protocol ICMP, got %s", flow.Protocol)
	}
	if flow.Port != 0 {
		t.Errorf("ICMP flow should carry no port, got %d", flow.Port)
	}
}

func TestParsePacketRejectsNonIP(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   eth.SrcMAC,
		SourceProtAddress: []byte{192, 168, 1, 10},
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    []byte{10, 0, 0, 5},
	}

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, eth, arp); err != nil {
		t.Fatalf("Failed to serialize ARP packet: %v", err)
	}

	if _, err := ParsePacket(buf.Bytes()); err == nil {
		t.Error("Expected error for non-IPv4 packet")
	}
}
