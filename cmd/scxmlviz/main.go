// Command scxmlviz renders an SCXML document as Graphviz DOT or a flat JSON
// dump of its state hierarchy, optionally highlighting an active
// configuration.
//
// Grounded on the teacher's visualizer.go/eventpublisher.go demo wiring in
// cmd/demo/main.go, split out as its own CLI since visualization here is a
// static export over a document.Document rather than something the
// teacher's live Machine produced on every tick.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/comalice/scxmlgo"
	"github.com/comalice/scxmlgo/internal/production"
)

func main() {
	format := flag.String("format", "dot", "output format: dot or json")
	active := flag.String("active", "", "comma-separated active state ids to highlight (dot only)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scxmlviz [--format dot|json] [--active id,id,...] <chart.scxml>")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "scxmlviz:", err)
		os.Exit(1)
	}
	defer f.Close()

	chart, _, err := scxmlgo.ParseXML(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scxmlviz: parse:", err)
		os.Exit(1)
	}

	v := &production.DefaultVisualizer{}
	switch *format {
	case "dot":
		var activeIDs []string
		if *active != "" {
			activeIDs = strings.Split(*active, ",")
		}
		fmt.Print(v.ExportDOT(chart.Document(), activeIDs))
	case "json":
		data, err := v.ExportJSON(chart.Document())
		if err != nil {
			fmt.Fprintln(os.Stderr, "scxmlviz: export:", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	default:
		fmt.Fprintln(os.Stderr, "scxmlviz: unknown format", *format)
		os.Exit(2)
	}
}
