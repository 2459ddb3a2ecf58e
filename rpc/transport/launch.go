package transport

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/robokit/simlink/rpc/common"
)

var launchesTotal = metrics.NewCounter("simlink_launches_total")

// runningMarker is the stdout token (matched case-insensitively) the remote
// application prints once it accepts API connections.
const runningMarker = "running"

// ConnectOrLaunch attempts Connect and, when nothing is listening, spawns the
// configured application binary and waits for its stdout to announce that it
// is running before retrying the connection once. The returned pid is nonzero
// only when this call started the process; the process is never terminated by
// closing the connection.
func ConnectOrLaunch(cfg common.ClientConfig) (Conn, int, error) {
	conn, err := Connect(cfg)
	if err == nil {
		return conn, 0, nil
	}
	if cfg.AppPath == "" {
		return nil, 0, err
	}

	Logger.Infof("connect failed (%v), starting %s", err, cfg.AppPath)
	cmd := exec.Command(cfg.AppPath, cfg.LaunchArgs()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, 0, fmt.Errorf("launch %s: %v", cfg.AppPath, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("launch %s: %v", cfg.AppPath, err)
	}
	launchesTotal.Inc()
	pid := cmd.Process.Pid

	// The process is left running whatever happens below; Wait in the
	// background so it is reaped when it eventually exits.
	defer func() { go cmd.Wait() }()

	if !awaitRunning(stdout, common.LaunchLineWait) {
		return nil, pid, fmt.Errorf("%w: %s never reported it is running",
			common.ErrNotConnected, cfg.AppPath)
	}

	conn, err = Connect(cfg)
	if err != nil {
		return nil, pid, err
	}
	return conn, pid, nil
}

// awaitRunning scans subprocess stdout line by line until a line containing
// the running marker appears. Each line is awaited for at most lineWait; a
// silent or exiting process ends the scan. After the scan the goroutine keeps
// discarding stdout until the process exits, so the pipe never fills up and
// blocks a chatty application.
func awaitRunning(stdout io.Reader, lineWait time.Duration) bool {
	lines := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				io.Copy(io.Discard, stdout)
				return
			}
		}
	}()
	defer close(done)

	timer := time.NewTimer(lineWait)
	defer timer.Stop()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return false
			}
			Logger.Debugf("app: %s", line)
			if strings.Contains(strings.ToLower(line), runningMarker) {
				return true
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(lineWait)
		case <-timer.C:
			return false
		}
	}
}
