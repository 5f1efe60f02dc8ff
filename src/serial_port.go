package pamon

/*------------------------------------------------------------------
 *
 * Purpose:   	Interface to the serial port attached to the monitoring rig.
 *
 * Description:	The rig sends newline terminated ASCII records.  Reads use
 *		a short inter-character timeout so a quiet line returns
 *		whatever has arrived, possibly nothing, rather than
 *		blocking forever.  That keeps the caller able to notice
 *		shutdown between records.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pkg/term"
	"go.bug.st/serial"
)

// Speeds the port can be set to.  0 leaves the device alone.
var supportedBauds = []int{0, 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}

// The terminal driver counts the read timeout in tenths of a second in a
// single byte.
const MaxReadTimeout = 25500 * time.Millisecond

// SupportedBaud reports whether baud is one of the standard speeds.
func SupportedBaud(baud int) bool {
	for _, b := range supportedBauds {
		if b == baud {
			return true
		}
	}

	return false
}

// SerialPort is an open device delivering one record per line.
type SerialPort struct {
	name string
	t    *term.Term
	br   *bufio.Reader
}

// OpenSerialPort opens devicename in raw mode.
//
// devicename is usually like /dev/ttyUSB1, could be /dev/rfcomm0 for Bluetooth.
// timeout is rounded by the terminal driver to tenths of a second.
func OpenSerialPort(devicename string, baud int, timeout time.Duration) (*SerialPort, error) {
	if !SupportedBaud(baud) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBaud, baud)
	}

	var options = []func(*term.Term) error{term.RawMode, term.ReadTimeout(timeout)}
	if baud != 0 {
		options = append(options, term.Speed(baud))
	}

	var t, err = term.Open(devicename, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open serial port %s: %w", ErrSerialIO, devicename, err)
	}

	return &SerialPort{
		name: devicename,
		t:    t,
		br:   bufio.NewReader(t),
	}, nil
}

func (p *SerialPort) Name() string {
	return p.name
}

// ReadLine returns the next line including its terminator.  When the read
// timeout expires first, it returns the partial line received so far,
// which is "" on a silent link, and no error.
func (p *SerialPort) ReadLine() (string, error) {
	var line, err = p.br.ReadString('\n')

	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, io.EOF):
		// The terminal driver reports an expired timeout as a zero length read.
		return line, nil
	default:
		return line, fmt.Errorf("%w: read %s: %w", ErrSerialIO, p.name, err)
	}
}

// Close releases the device.  Safe on a nil port.
func (p *SerialPort) Close() error {
	if p == nil || p.t == nil {
		return nil
	}

	return p.t.Close()
}

// ListPorts returns the names of the serial ports present on this machine.
func ListPorts() ([]string, error) {
	var ports, err = serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate ports: %w", ErrSerialIO, err)
	}

	return ports, nil
}
