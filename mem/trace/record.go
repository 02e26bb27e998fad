// Package trace reads, writes and generates memory access traces. A trace is
// a text stream with one access per line: an address of up to 8 hexadecimal
// digits, a space, and R or W.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/vmsim/mem/vm"
)

// A Record is one memory access of a trace.
type Record struct {
	Address uint32
	Access  vm.AccessType
}

// VPN returns the virtual page number of the address.
func (r Record) VPN(log2PageSize uint64) uint64 {
	return uint64(r.Address) >> log2PageSize
}

func (r Record) String() string {
	return fmt.Sprintf("%08x %c", r.Address, r.Access.Byte())
}

// ParseLine parses one trace line. It reports false if the line is not a
// trace record.
func ParseLine(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 || len(fields[0]) > 8 || len(fields[1]) != 1 {
		return Record{}, false
	}

	addr, err := strconv.ParseUint(fields[0], 16, 32)
	if err != nil {
		return Record{}, false
	}

	access, ok := vm.ParseAccessType(fields[1][0])
	if !ok {
		return Record{}, false
	}

	return Record{Address: uint32(addr), Access: access}, true
}

// A Reader reads records from a trace stream. It stops at the first line that
// is not a record.
type Reader struct {
	scanner *bufio.Scanner
	done    bool
	count   uint64
}

// NewReader creates a Reader on top of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next record. The bool is false once the trace has ended,
// either at the end of the stream or at a line that is unparsable or too
// long to scan. Other read failures are returned as errors.
func (r *Reader) Next() (Record, bool, error) {
	if r.done {
		return Record{}, false, nil
	}

	if !r.scanner.Scan() {
		r.done = true
		err := r.scanner.Err()
		if errors.Is(err, bufio.ErrTooLong) {
			return Record{}, false, nil
		}

		if err != nil {
			return Record{}, false, fmt.Errorf("reading trace: %w", err)
		}

		return Record{}, false, nil
	}

	rec, ok := ParseLine(r.scanner.Text())
	if !ok {
		r.done = true
		return Record{}, false, nil
	}

	r.count++

	return rec, true, nil
}

// Count returns how many records have been read.
func (r *Reader) Count() uint64 {
	return r.count
}

// WriteRecord writes a record as a trace line.
func WriteRecord(w io.Writer, rec Record) error {
	_, err := fmt.Fprintf(w, "%08x %c\n", rec.Address, rec.Access.Byte())
	return err
}
