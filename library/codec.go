package library

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// Record layout, all little-endian, records back to back with no header:
//
//	Book: int32 id | string name | bool marked | bool wishlist | bool loaned
//	User: string email | string password
//
// A string is a 7-bit-group varint byte length followed by UTF-8 bytes.
// A bool is one byte; any non-zero value reads as true.

// ErrInvalidRecord reports a truncated or malformed record file.
var ErrInvalidRecord = errors.New("invalid record")

// RecordWriter encodes records onto an underlying writer.
type RecordWriter struct {
	w   *bufio.Writer
	buf [binary.MaxVarintLen64]byte
}

// NewRecordWriter wraps w. Call Flush when done.
func NewRecordWriter(w io.Writer) *RecordWriter {
	return &RecordWriter{w: bufio.NewWriter(w)}
}

// WriteBook encodes one book record.
func (rw *RecordWriter) WriteBook(b Book) error {
	binary.LittleEndian.PutUint32(rw.buf[:4], uint32(b.ID))
	if _, err := rw.w.Write(rw.buf[:4]); err != nil {
		return err
	}
	if err := rw.writeString(b.Name); err != nil {
		return err
	}
	for _, flag := range [...]bool{b.IsMarked, b.IsWishlist, b.IsLoaned} {
		if err := rw.writeBool(flag); err != nil {
			return err
		}
	}
	return nil
}

// WriteUser encodes one user record.
func (rw *RecordWriter) WriteUser(u User) error {
	if err := rw.writeString(u.Email); err != nil {
		return err
	}
	return rw.writeString(u.Password)
}

// Flush writes any buffered bytes.
func (rw *RecordWriter) Flush() error { return rw.w.Flush() }

func (rw *RecordWriter) writeString(s string) error {
	if len(s) > math.MaxInt32 {
		return fmt.Errorf("string of %d bytes too long to encode", len(s))
	}
	n := binary.PutUvarint(rw.buf[:], uint64(len(s)))
	if _, err := rw.w.Write(rw.buf[:n]); err != nil {
		return err
	}
	_, err := rw.w.WriteString(s)
	return err
}

func (rw *RecordWriter) writeBool(v bool) error {
	var b byte
	if v {
		b = 1
	}
	return rw.w.WriteByte(b)
}

// RecordReader decodes records from an underlying reader.
type RecordReader struct {
	r   *bufio.Reader
	err error
}

// NewRecordReader wraps r.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: bufio.NewReader(r)}
}

// More reports whether another record starts at the current position.
// It returns false at end of data or on a read error; see Err.
func (rr *RecordReader) More() bool {
	_, err := rr.r.Peek(1)
	if err != nil && !errors.Is(err, io.EOF) {
		rr.err = err
	}
	return err == nil
}

// Err returns the first non-EOF error seen by More.
func (rr *RecordReader) Err() error { return rr.err }

// ReadBook decodes one book record. A stream that ends inside a record
// yields ErrInvalidRecord.
func (rr *RecordReader) ReadBook() (Book, error) {
	var b Book
	var id [4]byte
	if _, err := io.ReadFull(rr.r, id[:]); err != nil {
		return b, truncated(err)
	}
	b.ID = int32(binary.LittleEndian.Uint32(id[:]))

	var err error
	if b.Name, err = rr.readString(); err != nil {
		return b, err
	}
	if b.IsMarked, err = rr.readBool(); err != nil {
		return b, err
	}
	if b.IsWishlist, err = rr.readBool(); err != nil {
		return b, err
	}
	if b.IsLoaned, err = rr.readBool(); err != nil {
		return b, err
	}
	return b, nil
}

// ReadUser decodes one user record.
func (rr *RecordReader) ReadUser() (User, error) {
	var u User
	var err error
	if u.Email, err = rr.readString(); err != nil {
		return u, err
	}
	if u.Password, err = rr.readString(); err != nil {
		return u, err
	}
	return u, nil
}

func (rr *RecordReader) readString() (string, error) {
	n, err := binary.ReadUvarint(rr.r)
	if err != nil {
		return "", truncated(err)
	}
	if n > math.MaxInt32 {
		return "", fmt.Errorf("%w: string length %d", ErrInvalidRecord, n)
	}
	// The prefix is untrusted; grow with the bytes actually present.
	var sb strings.Builder
	if _, err := io.CopyN(&sb, rr.r, int64(n)); err != nil {
		return "", truncated(err)
	}
	return sb.String(), nil
}

func (rr *RecordReader) readBool() (bool, error) {
	b, err := rr.r.ReadByte()
	if err != nil {
		return false, truncated(err)
	}
	return b != 0, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: unexpected end of data", ErrInvalidRecord)
	}
	return err
}
