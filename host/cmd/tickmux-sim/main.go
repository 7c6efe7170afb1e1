package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"tickmux/core"
	"tickmux/protocol"
	"tickmux/scenario"
)

var (
	file    = flag.String("scenario", "", "YAML scenario to run")
	quiet   = flag.Bool("quiet", false, "Print the summary only")
	timings = flag.Bool("timings", false, "Dump the scheduler timing ring after the run")
	debug   = flag.Bool("debug", false, "Echo actions and dump the slot table")
	trace   = flag.String("trace", "", "Write the run as a binary trace (replay with tickmux-host -file)")
)

func main() {
	flag.Parse()
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: tickmux-sim -scenario file.yaml")
		os.Exit(2)
	}

	s, err := scenario.LoadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	core.SetDebugWriter(func(line string) { fmt.Println(line) })
	core.SetDebugEnabled(*debug)
	core.SetTimingEnabled(*timings)
	core.ClearTimingRing()

	res, err := scenario.Run(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scenario %s: %d timers, start=0x%02x, %d ticks\n", s.Name, len(s.Timers), s.Start, s.Duration)
	if !*quiet {
		for _, e := range res.Entries {
			fmt.Println(e)
		}
	}

	names := make([]string, 0, len(res.Fired))
	for name := range res.Fired {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("\ninterrupts=%d reloads=%d dispatched=%d missed=%d\n", res.Interrupts, res.Reloads, res.Dispatched, res.Missed)
	for _, name := range names {
		fmt.Printf("  %-12s fired %d\n", name, res.Fired[name])
	}

	if *trace != "" {
		if err := writeTrace(*trace, s, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *timings {
		core.DumpTimingRing()
	}
	if res.Missed > 0 {
		os.Exit(3)
	}
}

func writeTrace(path string, s *scenario.Scenario, res *scenario.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	tr := protocol.NewTracer(f)
	for _, r := range res.Reports(s) {
		tr.Report(r)
	}
	tr.Flush()
	if tr.Errors > 0 {
		f.Close()
		return fmt.Errorf("write trace %s: %d failed writes", path, tr.Errors)
	}
	return f.Close()
}
