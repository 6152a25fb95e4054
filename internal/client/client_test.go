package client_test

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mftp/internal/client"
	"mftp/internal/server"
	"mftp/pkg/minipager"
)

// bufPager captures paged output in memory instead of spawning a real pager,
// so tests don't depend on `more` being installed.
type bufPager struct {
	bytes.Buffer
}

func (p *bufPager) Page(r io.Reader) error {
	_, err := io.Copy(&p.Buffer, r)
	return err
}

func startTestServer(t *testing.T, dir string) int {
	t.Helper()

	srv := server.New(0, dir)
	ln, err := srv.Listen()
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go srv.Serve(ln)

	addr := ln.Addr().(*net.TCPAddr)
	return addr.Port
}

func dialTestClient(t *testing.T, port int) *client.Client {
	t.Helper()

	c, err := client.Dial("127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientGetRoundTrip(t *testing.T) {
	serverDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(serverDir, "hello.txt"), []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	port := startTestServer(t, serverDir)
	c := dialTestClient(t, port)

	clientDir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(clientDir); err != nil {
		t.Fatal(err)
	}

	if terminate := c.Run("get hello.txt"); terminate {
		t.Fatal("get should not terminate the session")
	}

	got, err := os.ReadFile(filepath.Join(clientDir, "hello.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello\n" {
		t.Fatalf("got %q, want %q", got, "hello\n")
	}
}

func TestClientShowPagesRemoteFile(t *testing.T) {
	serverDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(serverDir, "poem.txt"), []byte("roses\n"), 0644); err != nil {
		t.Fatal(err)
	}

	port := startTestServer(t, serverDir)
	c := dialTestClient(t, port)

	pager := &bufPager{}
	c.Pager = pager

	if terminate := c.Run("show poem.txt"); terminate {
		t.Fatal("show should not terminate the session")
	}

	if pager.String() != "roses\n" {
		t.Fatalf("paged %q, want %q", pager.String(), "roses\n")
	}
}

func TestClientPutRoundTrip(t *testing.T) {
	serverDir := t.TempDir()
	port := startTestServer(t, serverDir)
	c := dialTestClient(t, port)

	clientDir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(clientDir); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(clientDir, "upload.txt"), []byte("payload\n"), 0644); err != nil {
		t.Fatal(err)
	}

	done := make(chan bool, 1)
	go func() {
		done <- c.Run("put upload.txt")
	}()

	select {
	case terminate := <-done:
		if terminate {
			t.Fatal("put should not terminate the session")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("put round trip did not complete; client and server deadlocked")
	}

	got, err := os.ReadFile(filepath.Join(serverDir, "upload.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "payload\n" {
		t.Fatalf("got %q, want %q", got, "payload\n")
	}
}

func TestClientPutRejectsMissingFile(t *testing.T) {
	serverDir := t.TempDir()
	port := startTestServer(t, serverDir)
	c := dialTestClient(t, port)

	if terminate := c.Run("put /no/such/file"); terminate {
		t.Fatal("put should not terminate the session")
	}
	// No data handshake should have been attempted; the server is still
	// usable for a subsequent command.
	if terminate := c.Run("exit"); !terminate {
		t.Fatal("exit should terminate the session")
	}
}

func TestClientRemoteDirectoryChange(t *testing.T) {
	serverDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(serverDir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	port := startTestServer(t, serverDir)
	c := dialTestClient(t, port)

	if terminate := c.Run("rcd sub"); terminate {
		t.Fatal("rcd should not terminate the session")
	}
}

func TestClientUnknownCommand(t *testing.T) {
	serverDir := t.TempDir()
	port := startTestServer(t, serverDir)
	c := dialTestClient(t, port)

	if terminate := c.Run("frobnicate"); terminate {
		t.Fatal("unknown command should not terminate the session")
	}
}

func TestClientExit(t *testing.T) {
	serverDir := t.TempDir()
	port := startTestServer(t, serverDir)
	c := dialTestClient(t, port)

	if terminate := c.Run("exit"); !terminate {
		t.Fatal("exit should terminate the session")
	}
}
