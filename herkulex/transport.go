package herkulex

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// A Transport is the half-duplex byte stream linking the host to the servos.
type Transport interface {
	// Write sends the whole frame.
	Write(p []byte) (int, error)
	// Drain waits for the response window and returns every byte received meanwhile.
	Drain(window time.Duration) ([]byte, error)
	Close() error
}

// Known USB-serial bridges (VID:PID) used to wire HerkuleX buses.
var adapters = []string{
	"0403:6001", // FTDI FT232R
	"0403:6015", // FTDI FT231X
	"10c4:ea60", // Silicon Labs CP210x
	"1a86:7523", // QinHeng CH340
	"067b:2303", // Prolific PL2303
}

// Serial is a Transport over a serial port.
type Serial struct {
	pname string
	port  serial.Port
	rbuf  []byte
}

// Discover lists the serial ports backed by a known USB-serial bridge.
func Discover() ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var found []*enumerator.PortDetails
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}

		if slices.Contains(adapters, strings.ToLower(p.VID+":"+p.PID)) {
			found = append(found, p)
		}
	}

	return found, nil
}

// OpenSerialAuto opens the first discovered USB-serial bridge.
func OpenSerialAuto(baudrate int) (*Serial, error) {
	ports, err := Discover()
	if err != nil {
		return nil, err
	}
	if len(ports) == 0 {
		return nil, ErrNotFound
	}

	return OpenSerial(ports[0].Name, baudrate)
}

// OpenSerial opens the given port in 8N1 mode.
func OpenSerial(port string, baudrate int) (*Serial, error) {
	if baudrate == 0 {
		baudrate = DefaultBaudRate
	}

	s := &Serial{
		pname: port,
		rbuf:  make([]byte, 256),
	}

	var err error
	s.port, err = serial.Open(port, &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}

	if err = s.port.ResetInputBuffer(); err != nil {
		s.port.Close()
		return nil, err
	}

	if err = s.port.ResetOutputBuffer(); err != nil {
		s.port.Close()
		return nil, err
	}

	return s, nil
}

func (s *Serial) Port() string {
	return s.pname
}

// Write discards unread input, like acknowledgements of previous writes, before sending p.
func (s *Serial) Write(p []byte) (int, error) {
	if err := s.port.ResetInputBuffer(); err != nil {
		return 0, err
	}

	n, err := s.port.Write(p)
	if err != nil {
		return n, err
	}

	// Wait for the frame to leave the UART before the response window starts.
	return n, s.port.Drain()
}

func (s *Serial) Drain(window time.Duration) ([]byte, error) {
	var received []byte
	deadline := time.Now().Add(window)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return received, nil
		}

		if err := s.port.SetReadTimeout(remaining); err != nil {
			return nil, fmt.Errorf("read timeout: %w", err)
		}

		n, err := s.port.Read(s.rbuf)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			return received, nil // Window elapsed
		}

		received = append(received, s.rbuf[:n]...)
	}
}

func (s *Serial) Close() error {
	if err := s.port.ResetInputBuffer(); err != nil {
		return err
	}

	if err := s.port.ResetOutputBuffer(); err != nil {
		return err
	}

	return s.port.Close()
}
