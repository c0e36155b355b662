// Command uartsim runs the kernel's UART and VGA text drivers on the host.
//
// By default the drivers talk to simulated devices: a 16450-compatible UART
// and a text-mode framebuffer. With -hw the UART driver programs a real
// controller through /dev/port instead.
//
// Usage:
//
//	uartsim -scenario loopback.yaml [-trace out.cbor] [-hw] [-v]
//
// A scenario looks like:
//
//	name: hello
//	port: COM1
//	baud: 9600
//	parity: even
//	transmit: "hello\n"
//	receive: "ok"
//	screen:
//	  - text: "serial: ok"
//	    fg: light-green
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var errSerialFault = errors.New("serial port configuration failed")

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[uartsim] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "YAML scenario to run")
		tracePath    = flag.String("trace", "", "write the register access trace to this file (CBOR)")
		useHardware  = flag.Bool("hw", false, "drive a real UART through /dev/port")
		verbose      = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*scenarioPath, *tracePath, *useHardware, os.Stdout, logger); err != nil {
		exit(err)
	}
}

func run(scenarioPath, tracePath string, useHardware bool, out io.Writer, logger *slog.Logger) error {
	sc, err := LoadScenario(scenarioPath)
	if err != nil {
		return err
	}
	logger.Info("loaded scenario", slog.String("name", sc.Name), slog.Bool("hardware", useHardware))

	var report *Report
	if useHardware {
		bus, err := openDevPort()
		if err != nil {
			return err
		}
		defer bus.Close()

		if report, err = RunHardware(sc, bus, logger); err != nil {
			return err
		}
		if err = bus.Err(); err != nil {
			return err
		}
	} else if report, err = Simulate(sc, logger); err != nil {
		return err
	}

	if tracePath != "" {
		if err = writeTraceFile(tracePath, report); err != nil {
			return err
		}
		logger.Info("wrote trace", slog.String("path", tracePath), slog.Int("accesses", len(report.Trace)))
	}

	printReport(out, report)

	if report.SerialError != nil {
		return fmt.Errorf("%w: %w", errSerialFault, report.SerialError)
	}
	return nil
}

func writeTraceFile(path string, report *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	if err = WriteTrace(f, report.Trace); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printReport(w io.Writer, report *Report) {
	if report.SerialError != nil {
		fmt.Fprintf(w, "serial: %s (%s)\n", report.SerialError.Message, report.SerialError.Kind)
	} else {
		fmt.Fprintf(w, "serial: ok\n")
	}
	fmt.Fprintf(w, "transmitted: %s\n", strconv.Quote(string(report.Transmitted)))
	fmt.Fprintf(w, "received: %s\n", strconv.Quote(string(report.Received)))

	screen := report.Screen
	for len(screen) != 0 && screen[len(screen)-1] == "" {
		screen = screen[:len(screen)-1]
	}
	if len(screen) == 0 {
		return
	}

	width := 0
	for _, line := range screen {
		width = max(width, len(line))
	}

	border := "+" + strings.Repeat("-", width) + "+"
	fmt.Fprintln(w, border)
	for _, line := range screen {
		fmt.Fprintf(w, "|%-*s|\n", width, line)
	}
	fmt.Fprintln(w, border)
}
