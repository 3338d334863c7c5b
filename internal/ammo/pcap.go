package ammo

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

type flowKey struct {
	src, dst     string
	sport, dport uint16
}

// flow buffers the client payload of one TCP connection until it holds a
// complete request
type flow struct {
	buf  []byte
	next uint32
}

// PcapReader reassembles HTTP requests from the TCP payload of a classic
// pcap capture. Ethernet, Linux cooked and raw IP links are supported
type PcapReader struct {
	reader  *pcapgo.Reader
	closer  io.Closer
	filter  *Filter
	flows   map[flowKey]*flow
	pending []*Request
	stats   Stats
	done    bool
	packets int
	logger  log.Logger
}

// OpenPcap opens the capture at path
func OpenPcap(path string, filter *Filter, logger log.Logger) (*PcapReader, error) {
	if path == "" {
		return nil, ErrNoInput
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	p, err := NewPcapReader(f, filter, logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.closer = f

	return p, nil
}

// NewPcapReader reads a capture from r
func NewPcapReader(r io.Reader, filter *Filter, logger log.Logger) (*PcapReader, error) {
	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcap header: %w", err)
	}

	level.Debug(logger).Log("msg", "Capture opened", "link_type", reader.LinkType().String())

	return &PcapReader{
		reader: reader,
		filter: filter,
		flows:  make(map[flowKey]*flow),
		logger: logger,
	}, nil
}

// Next returns the next complete request in capture order
func (p *PcapReader) Next() (*Request, error) {
	for len(p.pending) == 0 {
		if p.done {
			return nil, io.EOF
		}

		data, _, err := p.reader.ReadPacketData()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			p.finish()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read packet %d: %w", p.packets+1, err)
		}
		p.packets++

		if err := p.handlePacket(data); err != nil {
			return nil, err
		}
	}

	req := p.pending[0]
	p.pending = p.pending[1:]
	return req, nil
}

func (p *PcapReader) handlePacket(data []byte) error {
	packet := gopacket.NewPacket(data, p.reader.LinkType(), gopacket.Default)

	var info PacketInfo
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		info.Src, info.Dst = ip.SrcIP.String(), ip.DstIP.String()
		info.Version, info.TTL = 4, int(ip.TTL)
	case *layers.IPv6:
		info.Src, info.Dst = ip.SrcIP.String(), ip.DstIP.String()
		info.Version, info.TTL = 6, int(ip.HopLimit)
	default:
		return nil
	}

	tcp, ok := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
	if !ok || len(tcp.Payload) == 0 {
		return nil
	}

	info.SrcPort, info.DstPort = int(tcp.SrcPort), int(tcp.DstPort)
	info.Seq, info.Ack, info.Window = tcp.Seq, tcp.Ack, int(tcp.Window)

	matched, err := p.filter.MatchPacket(info)
	if err != nil {
		return err
	}
	if !matched {
		return nil
	}

	key := flowKey{src: info.Src, dst: info.Dst, sport: uint16(tcp.SrcPort), dport: uint16(tcp.DstPort)}
	p.appendPayload(key, tcp.Seq, tcp.Payload)

	return nil
}

func (p *PcapReader) appendPayload(key flowKey, seq uint32, payload []byte) {
	fl, ok := p.flows[key]
	if !ok {
		if !looksLikeRequest(payload) {
			return
		}
		fl = &flow{next: seq}
		p.flows[key] = fl
	}

	// retransmitted segment
	if int32(seq-fl.next) < 0 {
		return
	}

	fl.buf = append(fl.buf, payload...)
	fl.next = seq + uint32(len(payload))

	for len(fl.buf) > 0 {
		if !looksLikeRequest(fl.buf) {
			p.stats.Total++
			p.stats.Incorrect++
			fl.buf = nil
			break
		}

		req, n, err := ParseRequest(fl.buf)
		if errors.Is(err, ErrIncomplete) {
			break
		}

		p.stats.Total++
		if err != nil {
			p.stats.Incorrect++
			level.Debug(p.logger).Log("msg", "Incorrect request", "src", key.src, "sport", key.sport, "err", err)
			fl.buf = nil
			break
		}

		p.stats.Complete++
		p.pending = append(p.pending, req)
		fl.buf = fl.buf[n:]
	}

	if len(fl.buf) == 0 {
		delete(p.flows, key)
	}
}

// finish counts the requests still waiting for data at the end of capture
func (p *PcapReader) finish() {
	p.done = true

	for key, fl := range p.flows {
		p.stats.Total++
		p.stats.Incomplete++
		level.Debug(p.logger).Log("msg", "Incomplete request", "src", key.src, "sport", key.sport, "bytes", len(fl.buf))
	}
	p.flows = make(map[flowKey]*flow)

	level.Debug(p.logger).Log("msg", "Capture finished", "packets", p.packets)
}

// Stats returns the counters of the requests read so far
func (p *PcapReader) Stats() Stats {
	return p.stats
}

// Close closes the capture file and releases the TCP/IP filter
func (p *PcapReader) Close() error {
	p.filter.Close()
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}
