// internal/poller/modbus/rtu_tcp.go
package modbus

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	rtuExceptionSize = 5 // slave, fc|0x80, code, crc(2)
	rtuMaxSize       = 256
)

// rtuOverTCP is a modbus.Transporter sending RTU frames over a plain TCP
// stream, as serial-to-ethernet gateways expect.
// Only read responses (FC 1-4) can be framed.
type rtuOverTCP struct {
	address string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

func (t *rtuOverTCP) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connect()
}

func (t *rtuOverTCP) connect() error {
	if t.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", t.address, t.timeout)
	if err != nil {
		return err
	}
	t.conn = conn
	return nil
}

func (t *rtuOverTCP) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeConn()
}

func (t *rtuOverTCP) closeConn() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// Send writes one request frame and reads exactly one response frame.
// Any I/O failure drops the connection; the next Send redials.
func (t *rtuOverTCP) Send(aduRequest []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.connect(); err != nil {
		return nil, err
	}

	resp, err := t.roundTrip(aduRequest)
	if err != nil {
		_ = t.closeConn()
		return nil, err
	}
	return resp, nil
}

func (t *rtuOverTCP) roundTrip(req []byte) ([]byte, error) {
	if err := t.conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, err
	}

	if _, err := t.conn.Write(req); err != nil {
		return nil, fmt.Errorf("rtu over tcp: write: %w", err)
	}

	buf := make([]byte, rtuMaxSize)

	// slave(1) fc(1) byte-count-or-exception-code(1)
	if _, err := io.ReadFull(t.conn, buf[:3]); err != nil {
		return nil, fmt.Errorf("rtu over tcp: read header: %w", err)
	}

	size := rtuExceptionSize
	if buf[1]&0x80 == 0 {
		if buf[1] < 1 || buf[1] > 4 {
			return nil, fmt.Errorf("rtu over tcp: unsupported function %d in response", buf[1])
		}
		size = 3 + int(buf[2]) + 2
	}
	if size > rtuMaxSize {
		return nil, errors.New("rtu over tcp: response too long")
	}

	if _, err := io.ReadFull(t.conn, buf[3:size]); err != nil {
		return nil, fmt.Errorf("rtu over tcp: read body: %w", err)
	}
	return buf[:size], nil
}
