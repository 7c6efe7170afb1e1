package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"tickmux/host/monitor"
	"tickmux/host/serial"
	"tickmux/protocol"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	file    = flag.String("file", "", "Replay a recorded trace instead of opening a device")
	verbose = flag.Bool("verbose", false, "Show commit and start/stop reports")
)

func main() {
	flag.Parse()

	src, name, err := open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	fmt.Printf("Tracing %s (Ctrl-C to stop)\n", name)

	m := monitor.New(src)
	m.StopAtEOF(*file != "")
	m.OnReport(func(r protocol.Report) {
		if !*verbose && quiet(r.Kind) {
			return
		}
		fmt.Println(m.Format(r))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = m.Run(ctx)

	s := m.Stats()
	fmt.Printf("\nframes=%d dropped=%d lost=%d bad=%d\n", s.Frames, s.Dropped, s.Lost, s.BadPayloads)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func open() (io.ReadCloser, string, error) {
	if *file != "" {
		f, err := os.Open(*file)
		return f, *file, err
	}
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	return port, *device, err
}

// quiet reports kinds that flood the console at normal rates
func quiet(kind uint8) bool {
	switch kind {
	case protocol.KindStart, protocol.KindStop, protocol.KindCommit, protocol.KindFeed:
		return true
	}
	return false
}
