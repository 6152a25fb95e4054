package server

import (
	"net"
	"os"
	"path/filepath"
	"strconv"

	"mftp/internal/ioprim"
	"mftp/internal/mproto"
	"mftp/internal/procutil"
	log "mftp/pkg/minilog"
)

// conn is one accepted control connection and its per-connection state: an
// optional data handle (absent unless a D handshake has installed one) and
// a virtual working directory.
type conn struct {
	ctl  net.Conn
	data net.Conn // nil unless a data handshake has installed one
	dir  string
}

func (c *conn) serve() {
	defer c.ctl.Close()
	defer c.closeData()

	remote := c.ctl.RemoteAddr()
	log.Info("accepted connection from %v", remote)

	buf := make([]byte, MaxLine)

	for {
		n, err := ioprim.ReadLine(c.ctl, buf)
		if err != nil {
			log.Error("control read from %v: %v", remote, err)
			return
		}
		if n == 0 {
			log.Info("connection from %v closed", remote)
			return
		}

		line := logicalLine(buf, n)

		cmd, ok := mproto.DecodeCommand(line)
		if !ok {
			c.writeErr("Unrecognized command")
			continue
		}

		if !c.dispatch(cmd) {
			return
		}
	}
}

// dispatch executes cmd and writes its response. It returns false if the
// connection should be torn down (the client sent Q).
func (c *conn) dispatch(cmd mproto.Command) bool {
	switch cmd.Kind {
	case mproto.Exit:
		c.writeAck("")
		return false
	case mproto.RCD:
		c.rcd(cmd.Arg)
	case mproto.Data:
		c.dataHandshake()
	case mproto.RLS:
		c.rls()
	case mproto.Get:
		c.get(cmd.Arg)
	case mproto.Put:
		c.put(cmd.Arg)
	default:
		c.writeErr("Unrecognized command")
	}
	return true
}

func (c *conn) rcd(arg string) {
	dest := resolvePath(c.dir, arg)

	info, err := os.Stat(dest)
	if err != nil {
		c.writeErr(err.Error())
		return
	}
	if !info.IsDir() {
		c.writeErr(dest + ": not a directory")
		return
	}

	c.dir = dest
	c.writeAck("")
}

// dataHandshake binds an ephemeral listener, reports its port, and blocks
// for the client's connection attempt. It never closes an existing data
// handle: per the state diagram, D replaces Ready with DataReady and only a
// data-bearing command consumes it.
func (c *conn) dataHandshake() {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		c.writeErr(err.Error())
		return
	}

	port, err := dataPort(ln)
	if err != nil {
		ln.Close()
		c.writeErr(err.Error())
		return
	}

	c.writeAck(strconv.Itoa(port))

	dc, err := ln.Accept()
	ln.Close()
	if err != nil {
		log.Error("data accept: %v", err)
		return
	}

	c.data = dc
}

func (c *conn) requireData() bool {
	if c.data == nil {
		c.writeErr("Data connection not established.")
		return false
	}
	return true
}

func (c *conn) closeData() {
	if c.data != nil {
		c.data.Close()
		c.data = nil
	}
}

// rls runs `ls -l` in the virtual working directory, streaming its output
// into the data connection. The server acknowledges after the transfer
// completes so the client can rely on the data socket's EOF.
func (c *conn) rls() {
	if !c.requireData() {
		return
	}
	defer c.closeData()

	err := procutil.ExecToHandle(c.data, c.dir, "ls", "-l")
	if err != nil {
		c.writeErr(err.Error())
		return
	}
	c.writeAck("")
}

// get reads the named file and streams it into the data connection. Shared
// by GET and SHOW: both arrive as the wire code G and only differ in how
// the client disposes of the payload.
func (c *conn) get(arg string) {
	if !c.requireData() {
		return
	}
	defer c.closeData()

	path := resolvePath(c.dir, arg)

	f, err := os.Open(path)
	if err != nil {
		c.writeErr(err.Error())
		return
	}
	defer f.Close()

	if err := ioprim.Copy(c.data, f); err != nil {
		c.writeErr(err.Error())
		return
	}
	c.writeAck("")
}

// put creates a local file named by the basename of arg and, once the
// client has been told it may proceed, streams the data connection into
// it. The server acknowledges before reading, the opposite order from
// rls/get, so the client knows when it's safe to start writing.
func (c *conn) put(arg string) {
	if !c.requireData() {
		return
	}
	defer c.closeData()

	path := resolvePath(c.dir, filepath.Base(arg))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		c.writeErr(err.Error())
		return
	}
	defer f.Close()

	c.writeAck("")

	if err := ioprim.Copy(f, c.data); err != nil {
		log.Error("put %v: %v", path, err)
	}
}

func (c *conn) writeAck(payload string) {
	c.writeLine(mproto.EncodeAck(payload))
}

func (c *conn) writeErr(message string) {
	c.writeLine(mproto.EncodeErr(message))
}

func (c *conn) writeLine(line string) {
	if _, err := ioprim.WriteFull(c.ctl, []byte(line)); err != nil {
		log.Error("control write: %v", err)
	}
}

// logicalLine strips the trailing NUL that ReadLine includes in its count
// when a line ended in '\n', leaving the line text with no terminator.
func logicalLine(buf []byte, n int) string {
	if n > 0 && buf[n-1] == 0 {
		return string(buf[:n-1])
	}
	return string(buf[:n])
}

// resolvePath joins arg onto dir unless arg is already absolute.
func resolvePath(dir, arg string) string {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg)
	}
	return filepath.Join(dir, arg)
}
