// Package server implements the mftp server's per-connection state machine:
// a control loop that reads a command, decodes it, executes it, and writes
// exactly one response, plus the data-socket handshake used for bulk
// transfers.
//
// The reference implementation forks one child process per accepted
// connection, which gives each connection its own process-wide working
// directory for free. Go has no per-goroutine working directory, so each
// connection instead tracks its own virtual directory and resolves every
// relative path against it explicitly rather than calling os.Chdir.
package server

import (
	"fmt"
	"net"

	log "mftp/pkg/minilog"
)

// MaxLine bounds a single control line, including its terminator.
const MaxLine = 8192

// diagnosticRingSize bounds how many recent log lines New retains for
// Diagnostics, independent of whatever level the stderr/file loggers are
// set to.
const diagnosticRingSize = 256

// Server listens for control connections and serves each on its own
// goroutine.
type Server struct {
	Port    int
	BaseDir string // working directory new connections start in

	ring *log.Ring
}

// New returns a Server that will listen on port, starting every accepted
// connection's virtual working directory at baseDir. It also registers an
// in-memory ring logger so recent activity can be inspected without a log
// file, even when the stderr logger is set to a quiet level.
func New(port int, baseDir string) *Server {
	log.DelLogger("server-ring")
	ring := log.NewRing(diagnosticRingSize)
	log.AddLogRing("server-ring", ring, log.DEBUG)

	return &Server{Port: port, BaseDir: baseDir, ring: ring}
}

// Diagnostics returns the most recent log lines recorded across every
// subsystem, oldest first.
func (s *Server) Diagnostics() []string {
	return s.ring.Dump()
}

// Listen binds the control port.
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
}

// Serve accepts connections on ln, handing each to its own goroutine, until
// Accept fails (normally because ln was closed).
func (s *Server) Serve(ln net.Listener) error {
	log.Info("listening on %v", ln.Addr())

	for {
		c, err := ln.Accept()
		if err != nil {
			return err
		}

		conn := &conn{
			ctl: c,
			dir: s.BaseDir,
		}

		go conn.serve()
	}
}

// ListenAndServe binds the control port and serves connections until the
// listener fails (which, since nothing ever closes it, means a fatal
// startup/accept error).
func (s *Server) ListenAndServe() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	return s.Serve(ln)
}

// dataPort returns the TCP port ln is bound to, or an error if ln is not a
// TCP listener.
func dataPort(ln net.Listener) (int, error) {
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("listener address is not TCP: %v", ln.Addr())
	}
	return addr.Port, nil
}

