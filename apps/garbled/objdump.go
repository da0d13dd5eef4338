//
// objdump.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"os"

	"github.com/alpenlabs/garbled-circuits/circuit"
)

// dumpReports prints a wire-usage report table for each circuit file
// named in files.
func dumpReports(files []string) error {
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}

		report, err := circuit.Analyze(circuit.NewLineStream(f))
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		fmt.Printf("%s:\n", name)
		report.WriteTable(os.Stdout)
		if report.GateCountMismatch {
			fmt.Printf("warning: header declares %d gates, file has %d\n",
				report.HeaderGateCount, report.ObservedGateCount)
		}
		fmt.Println()
	}
	return nil
}
