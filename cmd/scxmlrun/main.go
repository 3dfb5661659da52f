// Command scxmlrun parses and runs an SCXML document from the command
// line, printing the active configuration after initialization and after
// each event read from stdin (one "eventName [json-data]" per line).
//
// Grounded on the teacher's cmd/demo/main.go (machine builder, persister/
// publisher/visualizer wiring, ticker-driven send loop), replaced here with
// the scxmlgo package's ParseXML/Instance and a stdin-driven event loop
// since this module's interpreter is synchronous rather than actor-driven.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/comalice/scxmlgo"
	"github.com/comalice/scxmlgo/internal/feature"
)

func main() {
	check := flag.Bool("check", false, "print the feature-compatibility report and exit")
	flag.Parse()

	if *check {
		for _, line := range feature.Report() {
			fmt.Println(line)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scxmlrun [--check] <chart.scxml>")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "scxmlrun:", err)
		os.Exit(1)
	}
	defer f.Close()

	chart, warnings, err := scxmlgo.ParseXML(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scxmlrun: parse:", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "scxmlrun: warning:", w.String())
	}

	in, err := chart.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "scxmlrun:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := in.Initialize(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "scxmlrun: initialize:", err)
		os.Exit(1)
	}
	printConfiguration(in)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, data := parseEventLine(line)
		in.SendEvent(ctx, name, data)
		printConfiguration(in)
	}
}

func parseEventLine(line string) (string, any) {
	name, rest, hasData := strings.Cut(line, " ")
	if !hasData {
		return line, nil
	}
	var data any
	if err := json.Unmarshal([]byte(rest), &data); err != nil {
		return name, rest
	}
	return name, data
}

func printConfiguration(in *scxmlgo.Instance) {
	fmt.Println(strings.Join(in.AllActiveStates(), ", "))
}
