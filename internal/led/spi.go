package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// DefaultSPISpeed is comfortably inside what APA102 strips of ~1000 LEDs
// accept over a few metres of cable.
const DefaultSPISpeed = 8 * physic.MegaHertz

const defaultMaxTx = 4096

// SPI writes APA102 frames through a periph SPI port.
type SPI struct {
	mu    sync.Mutex
	port  spi.PortCloser
	c     spi.Conn
	maxTx int
}

// NewSPI opens dev (e.g. "/dev/spidev0.0", or "" for the first port).
// host.Init must have been called.
func NewSPI(dev string, speed physic.Frequency) (*SPI, error) {
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	s, err := NewSPIPort(p, speed)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// NewSPIPort connects to an already opened port in mode 0, 8 bits per word.
func NewSPIPort(p spi.PortCloser, speed physic.Frequency) (*SPI, error) {
	if speed <= 0 {
		speed = DefaultSPISpeed
	}
	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spi connect: %w", err)
	}
	s := &SPI{port: p, c: c, maxTx: defaultMaxTx}
	if l, ok := c.(conn.Limits); ok {
		if m := l.MaxTxSize(); m > 0 {
			s.maxTx = m
		}
	}
	return s, nil
}

// Write sends frame in chunks no larger than the port's transfer limit.
// APA102 is clocked by the host, so pauses between chunks are harmless.
func (s *SPI) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c == nil {
		return ErrClosed
	}
	for len(frame) > 0 {
		n := len(frame)
		if n > s.maxTx {
			n = s.maxTx
		}
		if err := s.c.Tx(frame[:n], nil); err != nil {
			return fmt.Errorf("spi write: %w", err)
		}
		frame = frame[n:]
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port, s.c = nil, nil
	return err
}

func (s *SPI) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return "apa102{closed}"
	}
	return fmt.Sprintf("apa102{%s}", s.c)
}
