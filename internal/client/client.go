// Package client implements the mftp client's command dispatcher: parsing a
// typed user line, classifying it by transport class, and running one of the
// three control-flow templates (local-only, remote-no-data, remote-with-data)
// described for the server's per-connection state machine's counterpart.
package client

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"mftp/internal/ioprim"
	"mftp/internal/mproto"
	"mftp/internal/procutil"
	"mftp/pkg/minipager"
	log "mftp/pkg/minilog"
)

// MaxLine matches the server's control-line ceiling; the client never reads
// a longer response line than the server would itself send.
const MaxLine = 8192

// Client owns the control socket for one session with a single server and
// drives the ephemeral data connection for data-bearing commands.
type Client struct {
	host string
	ctl  net.Conn
	buf  []byte // scratch space for reading one response line at a time

	// Pager receives paged output (local `ls`, remote `rls`/`show`).
	// Exposed for tests to substitute a buffer instead of spawning `more`.
	Pager minipager.Pager
}

// Dial connects to host on port and returns a ready Client.
func Dial(host string, port int) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{
		host:  host,
		ctl:   conn,
		buf:   make([]byte, MaxLine),
		Pager: minipager.DefaultPager,
	}, nil
}

// Close tears down the control connection.
func (c *Client) Close() error {
	return c.ctl.Close()
}

// Run parses and executes one user line, printing the "Running"/"Command
// finished" bracketing text spec'd for the dispatcher. It returns true if
// the session should terminate (the user issued exit and the server
// acknowledged it).
func (c *Client) Run(line string) bool {
	cmd := mproto.ParseUserLine(line)
	if cmd.Kind == mproto.Invalid {
		fmt.Printf("Unrecognized command: %q\n", line)
		return false
	}

	printRunning(cmd)

	var ok, terminate bool

	switch mproto.ClassOf(cmd.Kind) {
	case mproto.Local:
		ok = c.runLocal(cmd)
	case mproto.RemoteNoData:
		ok, terminate = c.runRemoteNoData(cmd.Kind, cmd.Arg)
	case mproto.RemoteWithData:
		ok = c.runRemoteWithData(cmd.Kind, cmd.Arg)
	default:
		ok = false
	}

	printFinished(ok)
	return terminate
}

func printRunning(cmd mproto.Command) {
	name := mproto.Name(cmd.Kind)
	if cmd.Arg != "" {
		fmt.Printf("Running %q with argument %q\n", name, cmd.Arg)
	} else {
		fmt.Printf("Running %q\n", name)
	}
}

func printFinished(ok bool) {
	if ok {
		fmt.Println("Command finished successfully (status = 0)")
		return
	}
	fmt.Println("Command finished unsuccessfully (status = 1)")
}

// runLocal executes CD or LS entirely locally; neither touches the control
// socket.
func (c *Client) runLocal(cmd mproto.Command) bool {
	switch cmd.Kind {
	case mproto.CD:
		if err := os.Chdir(cmd.Arg); err != nil {
			printError(err)
			return false
		}
		return true
	case mproto.LS:
		return c.localLS()
	default:
		return false
	}
}

// localLS runs `ls -l` and pages its output, mirroring the server's rls but
// without ever touching the network.
func (c *Client) localLS() bool {
	pr, pw := io.Pipe()

	go func() {
		err := procutil.ExecToHandle(pw, "", "ls", "-l")
		pw.CloseWithError(err)
	}()

	if err := c.Pager.Page(pr); err != nil {
		printError(err)
		return false
	}
	return true
}

// runRemoteNoData drives EXIT and RCD: one command line out, one response
// line back. It returns (ok, terminate); terminate is set only for a
// successful EXIT.
func (c *Client) runRemoteNoData(kind mproto.Kind, arg string) (ok, terminate bool) {
	if err := c.sendCommand(kind, arg); err != nil {
		printError(err)
		return false, false
	}

	rsp, err := c.readResponse()
	if err != nil {
		fmt.Println("unexpected EOF")
		return false, false
	}

	if rsp.Status == mproto.Err {
		fmt.Println("Server error:", rsp.Payload)
		return false, false
	}

	return true, kind == mproto.Exit
}

// runRemoteWithData drives RLS, GET, SHOW, and PUT: the D handshake, the
// ephemeral data connection, the real command, and the payload transfer in
// the direction and disposition that kind dictates.
func (c *Client) runRemoteWithData(kind mproto.Kind, arg string) bool {
	var putFile *os.File

	if kind == mproto.Put {
		f, err := openReadableRegular(arg)
		if err != nil {
			printError(err)
			return false
		}
		putFile = f
		defer putFile.Close()
	}

	if err := c.sendCommand(mproto.Data, ""); err != nil {
		printError(err)
		return false
	}

	rsp, err := c.readResponse()
	if err != nil {
		fmt.Println("unexpected EOF")
		return false
	}
	if rsp.Status == mproto.Err {
		fmt.Println("Server error:", rsp.Payload)
		return false
	}
	if rsp.Payload == "" {
		fmt.Println("Server error: data handshake carried no port")
		return false
	}

	dataConn, err := net.Dial("tcp", net.JoinHostPort(c.host, rsp.Payload))
	if err != nil {
		printError(err)
		return false
	}
	defer dataConn.Close()

	if err := c.sendCommand(kind, arg); err != nil {
		printError(err)
		return false
	}

	if err := c.transfer(kind, arg, dataConn, putFile); err != nil {
		printError(err)
		return false
	}

	// The server's PUT handler blocks reading the data connection until it
	// sees EOF, which only arrives once this end is closed; closing before
	// reading the final response line avoids a mutual wait (harmless for
	// RLS/GET/SHOW, whose server side has already closed its end by now).
	dataConn.Close()

	rsp, err = c.readResponse()
	if err != nil {
		fmt.Println("unexpected EOF")
		return false
	}
	if rsp.Status == mproto.Err {
		fmt.Println("Server error:", rsp.Payload)
		return false
	}

	return true
}

func (c *Client) transfer(kind mproto.Kind, arg string, data net.Conn, putFile *os.File) error {
	switch kind {
	case mproto.RLS, mproto.Show:
		return c.Pager.Page(data)
	case mproto.Get:
		path := filepath.Base(arg)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
		if err != nil {
			return err
		}
		defer f.Close()
		return ioprim.Copy(f, data)
	case mproto.Put:
		return ioprim.Copy(data, putFile)
	default:
		return fmt.Errorf("client: %v is not a data-bearing kind", kind)
	}
}

func openReadableRegular(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a readable regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (c *Client) sendCommand(kind mproto.Kind, arg string) error {
	line := mproto.EncodeCommand(kind, arg)
	log.Debug("-> %q", line)

	_, err := ioprim.WriteFull(c.ctl, []byte(line))
	return err
}

// readResponse reads one response line via ioprim.ReadLine, the same
// primitive and the same NUL-termination convention the server's control
// loop reads commands with (internal/server/conn.go). A line that ends
// without ever seeing '\n' — EOF mid-line, or truncation past MaxLine — is
// reported as io.EOF rather than decoded, matching pcl_read_message's
// refusal to accept an unterminated line.
func (c *Client) readResponse() (mproto.Response, error) {
	n, err := ioprim.ReadLine(c.ctl, c.buf)
	if err != nil {
		return mproto.Response{}, err
	}
	if n == 0 || c.buf[n-1] != 0 {
		return mproto.Response{}, io.EOF
	}

	line := string(c.buf[:n-1])
	log.Debug("<- %q", line)

	return mproto.DecodeResponse(line)
}

func printError(err error) {
	fmt.Println("Error:", err)
}
