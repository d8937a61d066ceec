package transport

import (
	"io"
	"strconv"

	"golang.org/x/crypto/cryptobyte"
)

// recordHeaderLen is the size of a TLS record header:
// content type, legacy version, length.
const recordHeaderLen = 5

// ContentTypeName returns the name of a TLS record content type.
func ContentTypeName(typ uint8) string {
	switch typ {
	case 20:
		return "change_cipher_spec"
	case 21:
		return "alert"
	case 22:
		return "handshake"
	case 23:
		return "application_data"
	default:
		return "unknown(" + strconv.Itoa(int(typ)) + ")"
	}
}

// recordScanner follows record boundaries in one direction of a TLS byte
// stream. Chunks may split headers and bodies anywhere.
type recordScanner struct {
	skip int    // body bytes of the current record still to come
	hdr  []byte // partial header carried over from the previous chunk
}

// feed consumes p and returns the content types of every header that
// completed inside it.
func (s *recordScanner) feed(p []byte) []string {
	var types []string
	for len(p) > 0 {
		if s.skip > 0 {
			k := min(s.skip, len(p))
			s.skip -= k
			p = p[k:]
			continue
		}

		need := recordHeaderLen - len(s.hdr)
		if len(p) < need {
			s.hdr = append(s.hdr, p...)
			break
		}
		s.hdr = append(s.hdr, p[:need]...)
		p = p[need:]

		var (
			typ     uint8
			version uint16
			length  uint16
		)
		h := cryptobyte.String(s.hdr)
		if h.ReadUint8(&typ) && h.ReadUint16(&version) && h.ReadUint16(&length) {
			types = append(types, ContentTypeName(typ))
			s.skip = int(length)
		}
		s.hdr = s.hdr[:0]
	}
	return types
}

// recordTap passes a transport through unchanged and remembers the content
// types of the records that crossed it since the last take.
type recordTap struct {
	rw       io.ReadWriter
	in, out  recordScanner
	inTypes  []string
	outTypes []string
}

func (t *recordTap) Read(p []byte) (int, error) {
	n, err := t.rw.Read(p)
	if n > 0 {
		t.inTypes = append(t.inTypes, t.in.feed(p[:n])...)
	}
	return n, err
}

func (t *recordTap) Write(p []byte) (int, error) {
	n, err := t.rw.Write(p)
	if n > 0 {
		t.outTypes = append(t.outTypes, t.out.feed(p[:n])...)
	}
	return n, err
}

func (t *recordTap) takeIn() []string {
	types := t.inTypes
	t.inTypes = nil
	return types
}

func (t *recordTap) takeOut() []string {
	types := t.outTypes
	t.outTypes = nil
	return types
}
