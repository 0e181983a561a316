// Package record implements the stored-record wire format. Every record
// begins with an 8-byte kind discriminator followed by little-endian fields;
// strings carry a u32 length prefix. Decoding is strict: a wrong
// discriminator, a truncated buffer or trailing bytes all reject the record
// rather than guessing at its contents.
package record

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	dErrors "mintgate/pkg/domain-errors"
)

// DiscriminatorLen is the size of the record kind tag.
const DiscriminatorLen = 8

// Record kinds. The discriminator is derived from the kind name, so the tag
// is stable across releases without a hand-maintained constant table.
const (
	KindConfig    = "config"
	KindMinter    = "minter"
	KindBlacklist = "blacklist"
	KindHook      = "transfer_hook"
)

// Discriminator returns the 8-byte tag for a record kind.
func Discriminator(kind string) [DiscriminatorLen]byte {
	sum := blake2b.Sum256([]byte("mintgate:" + kind))
	var d [DiscriminatorLen]byte
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// Writer serializes one record.
type Writer struct {
	buf []byte
}

// NewWriter starts a record of the given kind.
func NewWriter(kind string) *Writer {
	d := Discriminator(kind)
	return &Writer{buf: append([]byte{}, d[:]...)}
}

// Bytes returns the encoded record.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBool appends a boolean as one byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteU64 appends a little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteBytes32 appends a fixed 32-byte value.
func (w *Writer) WriteBytes32(v [32]byte) {
	w.buf = append(w.buf, v[:]...)
}

// WriteString appends a u32 length prefix and the UTF-8 bytes.
func (w *Writer) WriteString(v string) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(v)))
	w.buf = append(w.buf, v...)
}

// Reader deserializes one record. All methods return an invalid-account
// error on malformed input; callers check the final error once via Err or
// Finish.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader validates the discriminator for the given kind and positions the
// reader after it.
func NewReader(kind string, data []byte) (*Reader, error) {
	if len(data) < DiscriminatorLen {
		return nil, dErrors.New(dErrors.CodeInvalidAccount, "record too short for discriminator")
	}
	want := Discriminator(kind)
	var got [DiscriminatorLen]byte
	copy(got[:], data[:DiscriminatorLen])
	if got != want {
		return nil, dErrors.Newf(dErrors.CodeInvalidAccount, "record is not a %s record", kind)
	}
	return &Reader{buf: data, off: DiscriminatorLen}, nil
}

// Err returns the first decode error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Finish verifies the whole buffer was consumed and returns any decode error.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		return dErrors.Newf(dErrors.CodeInvalidAccount,
			"record has %d trailing bytes", len(r.buf)-r.off)
	}
	return nil
}

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if len(r.buf)-r.off < n {
		r.err = dErrors.New(dErrors.CodeInvalidAccount, "record truncated")
		return false
	}
	return true
}

// ReadU8 consumes one byte.
func (r *Reader) ReadU8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

// ReadBool consumes one byte as a boolean. Any nonzero value is true.
func (r *Reader) ReadBool() bool {
	return r.ReadU8() != 0
}

// ReadU32 consumes a little-endian uint32.
func (r *Reader) ReadU32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

// ReadU64 consumes a little-endian uint64.
func (r *Reader) ReadU64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

// ReadBytes32 consumes a fixed 32-byte value.
func (r *Reader) ReadBytes32() [32]byte {
	var v [32]byte
	if !r.need(32) {
		return v
	}
	copy(v[:], r.buf[r.off:])
	r.off += 32
	return v
}

// ReadString consumes a length-prefixed string bounded by maxLen bytes.
func (r *Reader) ReadString(maxLen int) string {
	n := int(r.ReadU32())
	if r.err != nil {
		return ""
	}
	if n > maxLen {
		r.err = dErrors.Newf(dErrors.CodeInvalidAccount,
			"string field length %d exceeds maximum %d", n, maxLen)
		return ""
	}
	if !r.need(n) {
		return ""
	}
	s := string(r.buf[r.off : r.off+n])
	r.off += n
	if !utf8.ValidString(s) {
		r.err = dErrors.New(dErrors.CodeInvalidAccount, "string field is not valid UTF-8")
		return ""
	}
	return s
}
