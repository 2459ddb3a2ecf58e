package transport_test

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robokit/simlink/rpc/common"
	"github.com/robokit/simlink/rpc/simserver"
	"github.com/robokit/simlink/rpc/transport"
)

// fakeServer accepts one connection, consumes the two handshake lines and
// answers with the given reply line.
func fakeServer(t *testing.T, reply string) (port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		r.ReadString('\n') // start marker
		r.ReadString('\n') // protocol version
		fmt.Fprintf(conn, "%s\n", reply)
		// keep the conn open briefly so the client can read the reply
		time.Sleep(100 * time.Millisecond)
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

func testConfig(port int) common.ClientConfig {
	cfg := common.NewClientConfig()
	cfg.Port = port
	cfg.Timeout = 2 * time.Second
	return cfg
}

// TestConnectHandshake tests a successful handshake against a scripted peer
func TestConnectHandshake(t *testing.T) {
	port := fakeServer(t, "READY v5.6")

	conn, err := transport.Connect(testConfig(port))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	conn.Close()
}

// TestConnectRejectsBadReply tests that a non-READY reply fails the
// handshake and leaves no open connection behind
func TestConnectRejectsBadReply(t *testing.T) {
	port := fakeServer(t, "BUSY")

	conn, err := transport.Connect(testConfig(port))
	if err == nil {
		conn.Close()
		t.Fatal("Connect() accepted a BUSY reply")
	}
	if !errors.Is(err, common.ErrHandshake) {
		t.Errorf("Connect() error = %v, want handshake error", err)
	}
	if conn != nil {
		t.Errorf("Connect() returned a connection alongside the error")
	}
}

// TestConnectRefused tests the error when nothing listens on the port
func TestConnectRefused(t *testing.T) {
	// bind and release a port so it is free
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	_, err = transport.Connect(testConfig(port))
	if !errors.Is(err, common.ErrNotConnected) {
		t.Errorf("Connect() error = %v, want not-connected error", err)
	}
}

// TestReadLineTimeout tests that a stalled read surfaces as a timeout error
func TestReadLineTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// never write anything
		time.Sleep(time.Second)
		conn.Close()
	}()

	raw, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn := transport.NewConn(raw)
	defer conn.Close()

	_, err = conn.ReadLine(50 * time.Millisecond)
	if !errors.Is(err, common.ErrTimeout) {
		t.Errorf("ReadLine() error = %v, want timeout error", err)
	}
}

// TestCloseIdempotent tests that Close can be called repeatedly
func TestCloseIdempotent(t *testing.T) {
	ca, cb := net.Pipe()
	defer cb.Close()

	conn := transport.NewConn(ca)
	if err := conn.Close(); err != nil {
		t.Fatalf("first Close() error: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

// TestConnectOrLaunch tests the auto-launch path: the first connect fails,
// the spawned script announces itself and the retry succeeds against a stub
// server brought up in the meantime
func TestConnectOrLaunch(t *testing.T) {
	// reserve a port for the stub server
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	// stand-in for the simulator binary
	script := filepath.Join(t.TempDir(), "sim.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 0.3\necho Simulator Running\nsleep 2\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	// the stub comes up while the script is still starting
	srv := simserver.NewStub()
	go func() {
		time.Sleep(100 * time.Millisecond)
		srv.Listen(fmt.Sprintf("127.0.0.1:%d", port))
	}()
	defer srv.Close()

	cfg := testConfig(port)
	cfg.AppPath = script
	cfg.AutoLaunch = true

	conn, pid, err := transport.ConnectOrLaunch(cfg)
	if err != nil {
		t.Fatalf("ConnectOrLaunch() error: %v", err)
	}
	defer conn.Close()
	if pid == 0 {
		t.Errorf("ConnectOrLaunch() pid = 0, want the launched process id")
	}
}

// TestConnectOrLaunchChattyApp tests that a launched application which keeps
// logging after the running marker is not stalled by a full stdout pipe: the
// script floods stdout well past the pipe buffer and then touches a sentinel
// file, which it can only reach if its output is being drained
func TestConnectOrLaunchChattyApp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	dir := t.TempDir()
	sentinel := filepath.Join(dir, "flushed")
	script := filepath.Join(dir, "sim.sh")
	body := "#!/bin/sh\n" +
		"sleep 0.3\n" +
		"echo Simulator Running\n" +
		"i=0\n" +
		"while [ $i -lt 4000 ]; do\n" +
		"  echo 'chatter ......................................................'\n" +
		"  i=$((i+1))\n" +
		"done\n" +
		"touch " + sentinel + "\n" +
		"sleep 2\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	srv := simserver.NewStub()
	go func() {
		time.Sleep(100 * time.Millisecond)
		srv.Listen(fmt.Sprintf("127.0.0.1:%d", port))
	}()
	defer srv.Close()

	cfg := testConfig(port)
	cfg.AppPath = script
	cfg.AutoLaunch = true

	conn, _, err := transport.ConnectOrLaunch(cfg)
	if err != nil {
		t.Fatalf("ConnectOrLaunch() error: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, err := os.Stat(sentinel); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("launched process never got past its log flood; stdout pipe not drained")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// TestConnectOrLaunchNoBinary tests that without an app path the connect
// error is returned as-is
func TestConnectOrLaunchNoBinary(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := testConfig(port)
	cfg.AutoLaunch = true

	_, pid, err := transport.ConnectOrLaunch(cfg)
	if err == nil {
		t.Fatal("ConnectOrLaunch() succeeded with nothing listening")
	}
	if pid != 0 {
		t.Errorf("ConnectOrLaunch() pid = %d, want 0", pid)
	}
}
