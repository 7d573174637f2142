// Package pcap turns capture files into flow records, for replaying traffic
// through the scoring pipeline or building a training corpus offline.
package pcap

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"go.uber.org/zap"

	"FlowSentry/internal/model"
	"FlowSentry/internal/protocol"
)

// Reader reads flow records from a pcap file.
type Reader struct {
	handle *pcap.Handle
	logger *zap.Logger
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string, logger *zap.Logger) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle, logger: logger}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadFlows reads all packets from the pcap file and sends the derived flow
// records to the provided channel. It closes the channel when done.
// Packets the parser rejects are logged and skipped.
func (r *Reader) ReadFlows(out chan<- model.FlowRecord) {
	defer close(out)

	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range packetSource.Packets() {
		flow, err := protocol.ParsePacket(packet.Data())
		if err != nil {
			r.logger.Debug("skipping packet", zap.Error(err))
			continue
		}
		out <- *flow
	}
}
