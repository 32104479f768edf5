package orientation

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// nmeaSource reads $PHTRO pitch/roll sentences from a serial tilt
// sensor. Other sentence types and partial lines are skipped.
type nmeaSource struct {
	port   io.ReadCloser
	reader *bufio.Reader
}

// NewNMEASource opens the serial port and returns a Source that blocks
// in Next until a valid PHTRO sentence arrives.
func NewNMEASource(portName string, baudRate uint) (Source, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open tilt serial port %s: %w", portName, err)
	}

	return &nmeaSource{port: port, reader: bufio.NewReader(port)}, nil
}

func (s *nmeaSource) Next() (Sample, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return Sample{}, fmt.Errorf("tilt serial read: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy sensor or partial sentences; keep trying
			continue
		}

		if sentence.DataType() != nmea.TypePHTRO {
			continue
		}
		return sampleFromPHTRO(sentence.(nmea.PHTRO)), nil
	}
}

func (s *nmeaSource) Close() error {
	return s.port.Close()
}

// sampleFromPHTRO converts a PHTRO sentence (degrees plus direction
// flags) into a signed radian sample. "P" means bow down, "T" means
// starboard down; both map to negative angles here.
func sampleFromPHTRO(m nmea.PHTRO) Sample {
	pitch := m.Pitch
	if m.Bow == "P" {
		pitch = -pitch
	}
	roll := m.Roll
	if m.Port == "T" {
		roll = -roll
	}
	return Sample{
		Pitch: pitch * math.Pi / 180.0,
		Roll:  roll * math.Pi / 180.0,
	}
}
