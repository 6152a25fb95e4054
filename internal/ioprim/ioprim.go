// Package ioprim implements the byte-level I/O primitives the mftp wire
// protocol is built on: a line reader with a fixed-size caller buffer, a
// writer that loops over short writes, and a streaming copy loop used for
// every bulk data transfer.
package ioprim

import (
	"io"
)

// BufSize is the chunk size used by Copy, mirroring the BUFSIZ-sized
// transfer buffer of the reference implementation.
const BufSize = 8192

// ReadLine reads from r one byte at a time into buf, stopping at the first
// of: EOF, a newline (replaced by a NUL and included in the count), or
// len(buf)-1 bytes read. It returns the number of bytes placed in buf, or
// -1 with err set if the underlying read fails. The bytes read are always
// followed by a NUL: the replaced newline at buf[n-1] when a newline ended
// the line, otherwise buf[n]. Byte-at-a-time reads keep r unbuffered so the
// same handle can still be used for a raw binary read afterwards.
func ReadLine(r io.Reader, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	remaining := len(buf) - 1
	i := 0
	one := make([]byte, 1)

	for remaining > 0 {
		n, err := r.Read(one)
		if n == 0 {
			if err == nil || err == io.EOF {
				break
			}
			return -1, err
		}

		if one[0] == '\n' {
			buf[i] = 0
			i++
			return i, nil
		}

		buf[i] = one[0]
		i++
		remaining--
	}

	buf[i] = 0
	return i, nil
}

// WriteFull writes p to w in full, looping over short writes. It returns
// the number of bytes written (less than len(p) only if w reported a
// zero-length write with no error), or -1 with err set on failure.
func WriteFull(w io.Writer, p []byte) (int, error) {
	total := 0

	for total < len(p) {
		n, err := w.Write(p[total:])
		if err != nil {
			return -1, err
		}
		if n == 0 {
			return total, nil
		}
		total += n
	}

	return total, nil
}

// Copy streams all of src into dst in BufSize chunks, using WriteFull for
// each chunk. It returns nil once src is exhausted, or the first I/O error
// encountered.
func Copy(dst io.Writer, src io.Reader) error {
	buf := make([]byte, BufSize)

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := WriteFull(dst, buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
