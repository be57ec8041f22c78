package robot

import (
	"bufio"
	"fmt"

	"go.bug.st/serial"
)

// SerialTransport implements Transport over a physical serial connection
// to the robot's microcontroller, mirroring the teacher's RadarPort
// (bufio.Scanner over an io.ReadWriter).
type SerialTransport struct {
	port    serial.Port
	scanner *bufio.Scanner
}

// DialSerial opens portName at the robot's fixed line settings.
func DialSerial(portName string, baudRate int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	return &SerialTransport{port: port, scanner: bufio.NewScanner(port)}, nil
}

// Read blocks for the next status line.
func (t *SerialTransport) Read() (string, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", &TransportError{Op: "read", Err: err}
		}
		return "", &TransportError{Op: "read", Err: fmt.Errorf("connection closed")}
	}
	return t.scanner.Text(), nil
}

// Write sends one command line.
func (t *SerialTransport) Write(cmd string) error {
	if _, err := t.port.Write([]byte(cmd)); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// Close releases the serial port.
func (t *SerialTransport) Close() error {
	if err := t.port.Close(); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}
