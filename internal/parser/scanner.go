package parser

import (
	"bytes"
	"fmt"
	"io"
)

const DefaultExcerptLimit = 50000

// Options tunes a Parser. Zero values select the defaults.
type Options struct {
	// ExcerptLimit caps the recovered NMEA text, in bytes.
	ExcerptLimit int
	// NMEALookahead bounds the search for a sentence terminator.
	NMEALookahead int
}

// framing is one wire format the scanner can route to.
type framing interface {
	// match reports whether buf (never empty) starts with this format's sync.
	match(buf []byte) bool
	// decode consumes one frame from the head of buf. ok=false marks a
	// truncated candidate; the scanner then resynchronizes by one byte.
	decode(buf []byte, acc *Accumulator) (n int, ok bool)
}

// Parser is safe for concurrent use: every call builds its own Accumulator.
type Parser struct {
	opts     Options
	framings []framing
}

func New(opts Options) *Parser {
	if opts.ExcerptLimit <= 0 {
		opts.ExcerptLimit = DefaultExcerptLimit
	}
	if opts.NMEALookahead <= 0 {
		opts.NMEALookahead = defaultNMEALookahead
	}
	return &Parser{
		opts: opts,
		// The first framing whose sync matches owns the position. SBF must
		// precede NMEA since both start with '$'.
		framings: []framing{
			sbfDecoder{},
			nmeaDecoder{lookahead: opts.NMEALookahead},
			ubxDecoder{},
		},
	}
}

// Options returns the effective options.
func (p *Parser) Options() Options { return p.opts }

// ParseBytes walks buf once and returns the reconstructed epochs. In-stream
// damage only ever reduces the output; it is never an error.
func (p *Parser) ParseBytes(buf []byte) Result {
	acc := newAccumulator(p.opts.ExcerptLimit)
	acc.stats.Bytes = len(buf)

	for pos := 0; pos < len(buf); {
		n := p.step(buf[pos:], acc)
		if n <= 0 {
			acc.stats.SkippedBytes++
			pos++
			continue
		}
		pos += n
	}
	acc.flush()
	return acc.result()
}

func (p *Parser) step(buf []byte, acc *Accumulator) int {
	for _, f := range p.framings {
		if !f.match(buf) {
			continue
		}
		n, ok := f.decode(buf, acc)
		if !ok {
			acc.stats.Truncated++
			return 0
		}
		return n
	}
	return 0
}

// Parse reads r to the end and parses it. Only read failures are returned.
func (p *Parser) Parse(r io.Reader) (Result, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return Result{}, fmt.Errorf("parser: read recording: %w", err)
	}
	return p.ParseBytes(buf.Bytes()), nil
}

// ParseBytes parses buf with default options.
func ParseBytes(buf []byte) Result {
	return New(Options{}).ParseBytes(buf)
}

// Parse parses r with default options.
func Parse(r io.Reader) (Result, error) {
	return New(Options{}).Parse(r)
}
