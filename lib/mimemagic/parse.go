package mimemagic

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

// Header is the fixed prefix of every magic file.
const Header = "MIME-Magic\x00\n"

// LoadStats summarizes one call to Load or LoadFile.
type LoadStats struct {
	Path    string
	Added   int
	Skipped []error
}

// LoadFile reads a magic file and adds its rules.  A file that cannot be
// read or lacks the header is rejected as a whole and nothing is added.
// Malformed sections are skipped and reported in LoadStats.Skipped.
func (m *Matcher) LoadFile(path string) (LoadStats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return LoadStats{Path: path}, LoadError{Path: path, Err: err}
	}
	return m.LoadBytes(raw, path)
}

// Load is LoadFile for an already-open stream.
func (m *Matcher) Load(r io.Reader, path string) (LoadStats, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return LoadStats{Path: path}, LoadError{Path: path, Err: err}
	}
	return m.LoadBytes(raw, path)
}

// LoadBytes parses an in-memory magic file.
func (m *Matcher) LoadBytes(raw []byte, path string) (LoadStats, error) {
	stats := LoadStats{Path: path}

	if !bytes.HasPrefix(raw, []byte(Header)) {
		return stats, LoadError{Path: path, Err: ErrBadHeader}
	}

	p := &parser{buf: raw, pos: len(Header)}
	for !p.eof() {
		sectionStart := p.pos
		r, err := p.parseSection()
		if err == nil {
			err = m.AddRule(r)
		}
		if err != nil {
			stats.Skipped = append(stats.Skipped, ParseError{
				Path:    path,
				Section: p.section,
				Offset:  sectionStart,
				Err:     err,
			})
			p.skipSection()
			continue
		}
		stats.Added++
	}
	return stats, nil
}

type flatMatchlet struct {
	depth int
	m     Matchlet
}

type parser struct {
	buf     []byte
	pos     int
	section string
}

func (p *parser) eof() bool {
	return p.pos >= len(p.buf)
}

func (p *parser) peek() (byte, bool) {
	if p.eof() {
		return 0, false
	}
	return p.buf[p.pos], true
}

func (p *parser) next() (byte, error) {
	if p.eof() {
		return 0, ErrTruncated
	}
	ch := p.buf[p.pos]
	p.pos++
	return ch, nil
}

func (p *parser) take(n int) ([]byte, error) {
	if n > len(p.buf)-p.pos {
		p.pos = len(p.buf)
		return nil, ErrTruncated
	}
	out := p.buf[p.pos : p.pos+n]
	p.pos += n
	return out, nil
}

// number reads a run of ASCII digits.  ok is false if there were none.
func (p *parser) number() (n int, ok bool, err error) {
	start := p.pos
	for !p.eof() && p.buf[p.pos] >= '0' && p.buf[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false, nil
	}
	n, err = strconv.Atoi(string(p.buf[start:p.pos]))
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// skipSection advances to the next '[' that begins a line, or to EOF.  It
// stays put when already there.
func (p *parser) skipSection() {
	if p.atSectionStart() {
		return
	}
	i := bytes.Index(p.buf[p.pos:], []byte("\n["))
	if i < 0 {
		p.pos = len(p.buf)
		return
	}
	p.pos += i + 1
}

func (p *parser) atSectionStart() bool {
	return p.pos < len(p.buf) && p.buf[p.pos] == '[' && p.pos > 0 && p.buf[p.pos-1] == '\n'
}

func (p *parser) parseSection() (Rule, error) {
	p.section = ""

	ch, err := p.next()
	if err != nil {
		return Rule{}, err
	}
	if ch != '[' {
		return Rule{}, ErrBadSection
	}

	end := bytes.IndexByte(p.buf[p.pos:], '\n')
	if end < 0 {
		p.pos = len(p.buf)
		return Rule{}, ErrTruncated
	}
	line := p.buf[p.pos : p.pos+end]
	p.pos += end + 1

	if len(line) < 2 || line[len(line)-1] != ']' {
		return Rule{}, ErrBadSection
	}
	line = line[:len(line)-1]
	p.section = string(line)

	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return Rule{}, ErrBadSection
	}
	priority, err := strconv.Atoi(string(line[:colon]))
	if err != nil || priority < 0 || priority > MaxPriority {
		return Rule{}, ErrBadPriority
	}
	mimeType := string(line[colon+1:])
	if !mimeutil.HasMediaSlash(mimeType) {
		return Rule{}, ErrBadMimeType
	}

	var flat []flatMatchlet
	for {
		ch, ok := p.peek()
		if !ok || ch == '[' {
			break
		}
		fm, err := p.parseMatchlet()
		if err != nil {
			return Rule{}, err
		}
		switch {
		case len(flat) == 0 && fm.depth != 0:
			return Rule{}, ErrBadIndent
		case len(flat) != 0 && fm.depth > flat[len(flat)-1].depth+1:
			return Rule{}, ErrBadIndent
		}
		flat = append(flat, fm)
	}

	if len(flat) == 0 {
		return Rule{}, ErrEmptySection
	}

	matchlets, _ := buildLevel(flat, 0, 0)
	return Rule{
		Type:      mimeType,
		Priority:  priority,
		Matchlets: matchlets,
	}, nil
}

// parseMatchlet reads one line:
//
//	[indent]'>'start[':'end]'='len(2, BE)value['&'mask]['~'wordsize]['+'range]'\n'
//
// The indent may instead be written as extra '>' characters.
func (p *parser) parseMatchlet() (flatMatchlet, error) {
	var fm flatMatchlet

	indent, hasIndent, err := p.number()
	if err != nil {
		return fm, ErrBadIndent
	}

	ch, err := p.next()
	if err != nil {
		return fm, err
	}
	if ch != '>' {
		return fm, UnexpectedByteError{Byte: ch}
	}

	if hasIndent {
		fm.depth = indent
	} else {
		for {
			ch, ok := p.peek()
			if !ok || ch != '>' {
				break
			}
			p.pos++
			fm.depth++
		}
	}

	start, ok, err := p.number()
	if err != nil || !ok {
		if p.eof() {
			return fm, ErrTruncated
		}
		return fm, ErrBadOffset
	}
	if start > MaxExtent {
		return fm, ErrOffsetOutOfRange
	}
	fm.m.Offset = start
	extraRange := 0

	ch, err = p.next()
	if err != nil {
		return fm, err
	}
	if ch == ':' {
		end, ok, err := p.number()
		if err != nil || !ok || end < start {
			return fm, ErrBadOffset
		}
		if end > MaxExtent {
			return fm, ErrOffsetOutOfRange
		}
		extraRange = end - start
		if ch, err = p.next(); err != nil {
			return fm, err
		}
	}
	if ch != '=' {
		return fm, UnexpectedByteError{Byte: ch}
	}

	rawLen, err := p.take(2)
	if err != nil {
		return fm, err
	}
	valueLen, _ := mimeutil.BigEndian.Uint16(rawLen)
	if valueLen == 0 {
		return fm, ErrBadValue
	}

	value, err := p.take(int(valueLen))
	if err != nil {
		return fm, err
	}
	fm.m.Value = value
	fm.m.RangeLength = 1

	for {
		ch, err := p.next()
		if err != nil {
			return fm, err
		}
		switch ch {
		case '\n':
			fm.m.RangeLength += extraRange
			return fm, nil

		case '&':
			mask, err := p.take(int(valueLen))
			if err != nil {
				return fm, err
			}
			fm.m.Mask = mask

		case '~':
			n, ok, err := p.number()
			if err != nil || !ok {
				return fm, ErrBadWordSize
			}
			fm.m.WordSize = n

		case '+':
			n, ok, err := p.number()
			if err != nil || !ok || n < 1 {
				return fm, ErrBadRange
			}
			if n > MaxExtent {
				return fm, ErrOffsetOutOfRange
			}
			fm.m.RangeLength = n

		default:
			return fm, UnexpectedByteError{Byte: ch}
		}
	}
}

func buildLevel(flat []flatMatchlet, i int, depth int) ([]Matchlet, int) {
	var out []Matchlet
	for i < len(flat) && flat[i].depth == depth {
		m := flat[i].m
		i++
		m.Children, i = buildLevel(flat, i, depth+1)
		out = append(out, m)
	}
	return out, i
}
