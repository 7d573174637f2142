package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gopacket"
	gopcap "github.com/google/gopacket/pcap"
	"go.uber.org/zap"

	"FlowSentry/internal/config"
	"FlowSentry/internal/ingest"
	"FlowSentry/internal/logging"
	"FlowSentry/internal/model"
	"FlowSentry/internal/protocol"
	"FlowSentry/pkg/pcap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	iface := flag.String("iface", "", "Network interface to capture from.")
	file := flag.String("file", "", "Pcap file to replay instead of live capture.")
	flag.Parse()

	if *iface == "" && *file == "" {
		log.Fatal("either -iface or -file must be given")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	pub, err := ingest.NewPublisher(cfg.Ingest, logger)
	if err != nil {
		logger.Fatal("failed to create publisher", zap.Error(err))
	}
	defer pub.Close()

	flows := make(chan model.FlowRecord, 1024)
	done := make(chan struct{})

	if *file != "" {
		reader, err := pcap.NewReader(*file, logger)
		if err != nil {
			logger.Fatal("failed to open pcap file", zap.String("file", *file), zap.Error(err))
		}
		defer reader.Close()
		go reader.ReadFlows(flows)
	} else {
		handle, err := gopcap.OpenLive(*iface, 65535, true, gopcap.BlockForever)
		if err != nil {
			logger.Fatal("failed to open interface", zap.String("iface", *iface), zap.Error(err))
		}
		defer handle.Close()
		logger.Info("capturing live traffic", zap.String("iface", *iface))
		go captureLive(handle, flows, done, logger)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	published := 0
	for {
		select {
		case flow, ok := <-flows:
			if !ok {
				logger.Info("capture finished", zap.Int("published", published))
				return
			}
			if err := pub.Publish(flow); err != nil {
				logger.Error("failed to publish flow", zap.Error(err))
				continue
			}
			published++
		case <-sigChan:
			logger.Info("shutdown signal received", zap.Int("published", published))
			close(done)
			return
		}
	}
}

// captureLive reads packets off the handle until done closes, converting
// each into a flow record. Packets the parser cannot classify are skipped.
func captureLive(handle *gopcap.Handle, out chan<- model.FlowRecord, done <-chan struct{}, logger *zap.Logger) {
	defer close(out)

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for {
		select {
		case <-done:
			return
		case packet, ok := <-source.Packets():
			if !ok {
				return
			}
			flow, err := protocol.ParsePacket(packet.Data())
			if err != nil {
				logger.Debug("skipping packet", zap.Error(err))
				continue
			}
			out <- *flow
		}
	}
}
