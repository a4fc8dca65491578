package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// ipcCommand is one request on mpv's JSON-IPC socket.
type ipcCommand struct {
	Command []any `json:"command"`
}

// ipcMessage is either a reply (Error set) or an asynchronous event (Event set).
type ipcMessage struct {
	Data  any    `json:"data"`
	Error string `json:"error"`
	Event string `json:"event"`
	Name  string `json:"name"`
	ID    int    `json:"id"`

	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 2 * time.Second
)

// command sends a request on a short-lived connection, retrying transient failures.
func (p *process) command(args ...any) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := roundTrip(p.socketPath, args)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !p.running() {
			break
		}
	}

	return nil, fmt.Errorf("ipc %v failed after retries: %w", args[0], lastErr)
}

func roundTrip(socketPath string, args []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := writeCommand(conn, args); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	// events broadcast to every client may arrive before the reply
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		msg, err := decodeMessage(scanner.Bytes())
		if err != nil {
			return nil, err
		}
		if msg.Event != "" {
			continue
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", msg.Error)
		}
		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: connection closed")
}

func writeCommand(conn net.Conn, args []any) error {
	payload, err := json.Marshal(ipcCommand{Command: args})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func decodeMessage(line []byte) (ipcMessage, error) {
	var msg ipcMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return msg, fmt.Errorf("unmarshal: %w", err)
	}
	return msg, nil
}
