package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"gnsslog/internal/parser"
)

type udpConn interface {
	Write(p []byte) (int, error)
	Close() error
}

type (
	resolveFunc func(network, address string) (*net.UDPAddr, error)
	dialFunc    func(network string, laddr, raddr *net.UDPAddr) (udpConn, error)
)

// UDPSink sends each epoch as one JSON datagram to a fixed destination,
// for local dashboards that already listen on a port.
type UDPSink struct {
	dest string
	conn udpConn
}

func NewUDP(dest string) (*UDPSink, error) {
	return newUDP(dest, net.ResolveUDPAddr, func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return net.DialUDP(network, laddr, raddr)
	})
}

func newUDP(dest string, resolve resolveFunc, dial dialFunc) (*UDPSink, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %s: %w", dest, err)
	}
	// DialUDP selects a suitable local address automatically.
	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("udp: dial %s: %w", dest, err)
	}
	return &UDPSink{dest: dest, conn: conn}, nil
}

type udpDatagram struct {
	Recording string `json:"recording"`
	parser.Epoch
}

func (s *UDPSink) Publish(ctx context.Context, id string, res parser.Result) error {
	for _, e := range res.Epochs {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(udpDatagram{Recording: id, Epoch: e})
		if err != nil {
			return fmt.Errorf("udp: marshal epoch: %w", err)
		}
		if _, err := s.conn.Write(payload); err != nil {
			return fmt.Errorf("udp: send to %s: %w", s.dest, err)
		}
	}
	return nil
}

func (s *UDPSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
