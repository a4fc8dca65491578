package mpv

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reelkit/reel/constant"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/where"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// spawn launches mpv; replaced in tests.
var spawn = startProcess

// process is one idle mpv instance driven over its JSON-IPC socket.
type process struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	mu         sync.Mutex // serializes IPC commands
}

// launchArgs builds the command line for an idle, paused instance. Playback is driven
// entirely over IPC, so no media target is passed here.
func launchArgs(socketPath string, wid int64, extra []string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--keep-open=yes",
		"--pause=yes",
		"--force-window=yes",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		fmt.Sprintf("--title=%s", constant.Reel),
	}
	if wid != 0 {
		args = append(args, fmt.Sprintf("--wid=%d", wid))
	}

	for _, flag := range extra {
		flag = strings.TrimSpace(flag)
		if strings.HasPrefix(flag, "--") && !strings.ContainsAny(flag, "\x00\n\r") {
			args = append(args, flag)
		}
	}
	return args
}

func startProcess(binary string, wid int64, extra []string) (*process, error) {
	p := &process{
		socketPath: filepath.Join(where.Sockets(), fmt.Sprintf("%s-%s.sock", constant.Reel, uuid.NewString()[:8])),
		exited:     make(chan struct{}),
	}

	p.cmd = exec.Command(binary, launchArgs(p.socketPath, wid, extra)...)
	p.cmd.SysProcAttr = sysProcAttr()
	p.cmd.Stdout = nil
	p.cmd.Stderr = nil
	p.cmd.Stdin = nil

	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	go func() {
		_ = p.cmd.Wait()
		close(p.exited)
	}()

	if err := p.waitForSocket(); err != nil {
		select {
		case <-p.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(p.cmd)
		}
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	return p, nil
}

func (p *process) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-p.exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", p.socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", p.socketPath, socketWaitRetries)
}

// Exited is closed when the process is gone.
func (p *process) Exited() <-chan struct{} {
	return p.exited
}

func (p *process) running() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

func (p *process) set(property string, value any) error {
	_, err := p.command("set_property", property, value)
	return err
}

// close asks mpv to quit, kills it if it does not, and removes the socket.
func (p *process) close() {
	if p.running() {
		_, _ = p.command("quit")
	}

	select {
	case <-p.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(p.cmd)
	}

	_ = os.Remove(p.socketPath)
}

// mediaTarget validates a track URL before it reaches loadfile.
func mediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty URL")
	}
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("invalid control characters in URL")
	}
	if strings.HasPrefix(l, "-") {
		return "", errors.New("url must not start with '-'")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "rtmp", "rtsp":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}
