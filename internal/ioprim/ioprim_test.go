package ioprim_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"mftp/internal/ioprim"
)

func TestReadLineNewline(t *testing.T) {
	r := strings.NewReader("hello\nworld\n")
	buf := make([]byte, 32)

	n, err := ioprim.ReadLine(r, buf)
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if got := string(buf[:n]); got != "hello\x00" {
		t.Fatalf("got %q, want %q", got, "hello\x00")
	}
}

func TestReadLineEOF(t *testing.T) {
	r := strings.NewReader("no newline")
	buf := make([]byte, 32)

	n, err := ioprim.ReadLine(r, buf)
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if got := string(buf[:n]); got != "no newline" {
		t.Fatalf("got %q", got)
	}
	if buf[n] != 0 {
		t.Fatalf("expected NUL at position %d", n)
	}
}

func TestReadLineTruncates(t *testing.T) {
	r := strings.NewReader("abcdefgh\n")
	buf := make([]byte, 5)

	n, err := ioprim.ReadLine(r, buf)
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if n != len(buf)-1 {
		t.Fatalf("n = %d, want %d", n, len(buf)-1)
	}
	if buf[n] != 0 {
		t.Fatalf("expected NUL-terminator at position %d", n)
	}
	if got := string(buf[:n]); got != "abcd" {
		t.Fatalf("got %q, want %q", got, "abcd")
	}
}

func TestReadLineEmptyEOF(t *testing.T) {
	r := strings.NewReader("")
	buf := make([]byte, 8)

	n, err := ioprim.ReadLine(r, buf)
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
}

type shortWriter struct {
	chunk int
	buf   bytes.Buffer
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.chunk {
		p = p[:w.chunk]
	}
	return w.buf.Write(p)
}

func TestWriteFullLoopsOverShortWrites(t *testing.T) {
	w := &shortWriter{chunk: 3}
	data := []byte("hello, world")

	n, err := ioprim.WriteFull(w, data)
	if err != nil {
		t.Fatalf("WriteFull: %v", err)
	}
	if n != len(data) {
		t.Fatalf("n = %d, want %d", n, len(data))
	}
	if w.buf.String() != string(data) {
		t.Fatalf("wrote %q, want %q", w.buf.String(), data)
	}
}

type erroringWriter struct{}

func (erroringWriter) Write([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestWriteFullError(t *testing.T) {
	n, err := ioprim.WriteFull(erroringWriter{}, []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if n != -1 {
		t.Fatalf("n = %d, want -1", n)
	}
}

func TestCopyByteIdentical(t *testing.T) {
	src := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 500)

	var dst bytes.Buffer
	if err := ioprim.Copy(&dst, bytes.NewReader(src)); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	if !bytes.Equal(dst.Bytes(), src) {
		t.Fatal("copy was not byte-identical")
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("read failure")
}

func TestCopyPropagatesReadError(t *testing.T) {
	var dst bytes.Buffer
	err := ioprim.Copy(&dst, errReader{})
	if err == nil {
		t.Fatal("expected error")
	}
}

var _ io.Reader = (*strings.Reader)(nil)
