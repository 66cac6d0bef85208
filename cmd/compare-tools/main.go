// compare-tools reads a returned-tools JSON list and compares it against the
// standard kit, printing the kiosk report. The input format matches the
// returned_tools array of the comparison endpoint:
//
//	[{"tool_id": 1, "name": "Отвертка «-»", "quantity": 1}, ...]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/avialab/toolkiosk/internal/reconcile"
	"github.com/avialab/toolkiosk/internal/report"
	"github.com/avialab/toolkiosk/internal/toolkit"
)

func main() {
	var asJSON bool
	flag.BoolVar(&asJSON, "json", false, "print the full comparison result as JSON")
	flag.Parse()

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	var returned []reconcile.ReturnedTool
	if err := json.NewDecoder(in).Decode(&returned); err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding returned tools: %v\n", err)
		os.Exit(1)
	}

	result := reconcile.Compare(reconcile.IssuedFromKit(toolkit.Standard), returned)

	if asJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Print(report.Format(result))
}
