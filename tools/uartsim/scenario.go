package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"minikern/device/serial"
	"minikern/device/sim"
	"minikern/device/video/console"

	"gopkg.in/yaml.v3"
)

// Scenario describes a single simulator run.
type Scenario struct {
	Name string `yaml:"name"`

	// Port is one of COM1..COM4. Defaults to COM1.
	Port string `yaml:"port"`

	// Line settings. Zero values select 38400 baud, 8N1 and a 14 byte
	// receive trigger level.
	Baud      uint32 `yaml:"baud"`
	CharWidth int    `yaml:"char_width"`
	Parity    string `yaml:"parity"`
	StopBits  int    `yaml:"stop_bits"`
	Trigger   int    `yaml:"trigger"`

	// Fault is injected into the simulated UART: "" or "stuck-data".
	Fault string `yaml:"fault"`

	// Receive is injected into the receiver once the port is configured.
	Receive string `yaml:"receive"`

	// Transmit is written to the port once it is configured.
	Transmit string `yaml:"transmit"`

	Screen []ScreenText `yaml:"screen"`
}

// ScreenText is a piece of text placed on the simulated text console.
type ScreenText struct {
	Text   string `yaml:"text"`
	Offset uint32 `yaml:"offset"`
	Fg     string `yaml:"fg"`
	Bg     string `yaml:"bg"`
	Blink  bool   `yaml:"blink"`
}

// ErrInvalidScenario is wrapped by every scenario validation error.
var ErrInvalidScenario = errors.New("invalid scenario")

// ParseScenario decodes a YAML scenario. Unknown keys are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if _, err := sc.SerialPort(); err != nil {
		return nil, err
	}
	if _, err := sc.SerialConfig(); err != nil {
		return nil, err
	}
	if _, err := sc.UARTFault(); err != nil {
		return nil, err
	}
	for i, st := range sc.Screen {
		if _, _, err := st.colors(); err != nil {
			return nil, fmt.Errorf("screen entry %d: %w", i, err)
		}
	}

	return &sc, nil
}

// LoadScenario reads and decodes the scenario file at path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// SerialPort returns the port selected by the scenario.
func (sc *Scenario) SerialPort() (serial.Port, error) {
	if sc.Port == "" {
		return serial.COM1, nil
	}

	for _, port := range []serial.Port{serial.COM1, serial.COM2, serial.COM3, serial.COM4} {
		if strings.EqualFold(sc.Port, port.String()) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown port %q", ErrInvalidScenario, sc.Port)
}

// SerialConfig converts the scenario line settings into a serial.Config.
func (sc *Scenario) SerialConfig() (serial.Config, error) {
	cfg := serial.DefaultConfig

	if sc.Baud != 0 {
		divisor, kerr := serial.DivisorForBaud(sc.Baud)
		if kerr != nil {
			return cfg, fmt.Errorf("%w: baud %d: %w", ErrInvalidScenario, sc.Baud, kerr)
		}
		cfg.Divisor = divisor
	}

	switch {
	case sc.CharWidth == 0:
	case sc.CharWidth >= 5 && sc.CharWidth <= 8:
		cfg.CharWidth = serial.CharWidth(sc.CharWidth - 5)
	default:
		return cfg, fmt.Errorf("%w: unsupported character width %d", ErrInvalidScenario, sc.CharWidth)
	}

	switch strings.ToLower(sc.Parity) {
	case "", "none":
		cfg.Parity = serial.ParityNone
	case "odd":
		cfg.Parity = serial.ParityOdd
	case "even":
		cfg.Parity = serial.ParityEven
	case "mark":
		cfg.Parity = serial.ParityMark
	case "space":
		cfg.Parity = serial.ParitySpace
	default:
		return cfg, fmt.Errorf("%w: unknown parity %q", ErrInvalidScenario, sc.Parity)
	}

	switch sc.StopBits {
	case 0, 1:
	case 2:
		cfg.ExtendedStopBit = true
	default:
		return cfg, fmt.Errorf("%w: unsupported stop bit count %d", ErrInvalidScenario, sc.StopBits)
	}

	switch sc.Trigger {
	case 0, 14:
	case 1:
		cfg.Trigger = serial.Trigger1Byte
	case 4:
		cfg.Trigger = serial.Trigger4Bytes
	case 8:
		cfg.Trigger = serial.Trigger8Bytes
	default:
		return cfg, fmt.Errorf("%w: unsupported trigger level %d", ErrInvalidScenario, sc.Trigger)
	}

	return cfg, nil
}

// UARTFault returns the fault injected into the simulated UART.
func (sc *Scenario) UARTFault() (sim.Fault, error) {
	switch sc.Fault {
	case "":
		return sim.FaultNone, nil
	case "stuck-data":
		return sim.FaultStuckData, nil
	default:
		return sim.FaultNone, fmt.Errorf("%w: unknown fault %q", ErrInvalidScenario, sc.Fault)
	}
}

func (st ScreenText) colors() (fg, bg console.Color, err error) {
	if fg, err = parseColor(st.Fg, console.Green); err != nil {
		return fg, bg, err
	}
	bg, err = parseColor(st.Bg, console.Black)
	return fg, bg, err
}

// parseColor maps a color name such as "light-green" or "Light Green" to a
// console.Color.
func parseColor(name string, def console.Color) (console.Color, error) {
	if name == "" {
		return def, nil
	}

	name = strings.ToLower(strings.ReplaceAll(name, "-", " "))
	for c := console.Black; c <= console.White; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return def, fmt.Errorf("%w: unknown color %q", ErrInvalidScenario, name)
}
