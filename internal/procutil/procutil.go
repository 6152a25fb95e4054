// Package procutil wraps the subprocess piping the mftp server and client
// rely on: redirecting a child's combined stdout/stderr into a file handle
// (used for `ls -l`), and feeding a stream through a paging program so a
// long listing or file doesn't scroll off the terminal in one shot.
package procutil

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"mftp/internal/ioprim"
	log "mftp/pkg/minilog"
)

// ExecToHandle runs name with args in dir (the caller's process directory if
// dir is ""), redirecting both its standard output and standard error to w,
// and waits for it to finish. It reports an error only if the process
// couldn't be started or waited on; a nonzero exit status is not itself
// treated as failure, mirroring the reference implementation's exec_to_fd.
func ExecToHandle(w io.Writer, dir, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = w
	cmd.Stderr = w

	log.Debug("running %v %v in %v", name, args, dir)

	if err := cmd.Start(); err != nil {
		return err
	}

	if err := cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return nil
		}
		return err
	}

	return nil
}

// pagerCommand returns the argv for the paging program: $PAGER if set
// (taken as a single executable name, no argument parsing), otherwise the
// reference implementation's "more -20".
func pagerCommand() (string, []string) {
	if p := os.Getenv("PAGER"); p != "" {
		return p, nil
	}
	return "more", []string{"-20"}
}

// Page streams r through the configured pager to the controlling terminal.
// The streaming happens on a separate goroutine from the one that waits on
// the pager; if the user quits the pager before r is exhausted, the
// goroutine observes a broken pipe rather than killing the whole process,
// the same isolation the reference implementation gets from forking a
// dedicated child to feed the pipe.
func Page(r io.Reader) error {
	name, args := pagerCommand()
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	copyErr := make(chan error, 1)
	go func() {
		err := ioprim.Copy(in, r)
		in.Close()
		copyErr <- err
	}()

	waitErr := cmd.Wait()
	if err := <-copyErr; err != nil && !isBrokenPipe(err) {
		return err
	}

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			return waitErr
		}
	}

	return nil
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}
