package main

import (
	"fmt"

	"github.com/ChicagoDave/citadel/pkg/store"
	"github.com/ChicagoDave/citadel/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	for _, stage := range []validation.Stage{validation.StageDocument, validation.StageSchema, validation.StageSpatial} {
		results := r.At(stage)
		if len(results) == 0 {
			continue
		}
		fmt.Printf("%s (%d):\n", stage, len(results))
		for _, res := range results {
			fmt.Printf("  [%s] %s\n", res.Severity, res.Message)
			if res.Path != "" {
				fmt.Printf("    -> %s = %v\n", res.Path, res.Got)
			}
			if res.Want != "" {
				fmt.Printf("    expected: %s\n", res.Want)
			}
			if res.Related != "" {
				fmt.Printf("    conflicts with: %s\n", res.Related)
			}
			for _, s := range res.Hints {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printRuns(runs []store.Run) {
	fmt.Println("Stored runs")
	fmt.Println("===========")
	fmt.Printf("  %-5s  %-20s  %10s  %6s  %9s  %8s  %s\n", "ID", "Created", "Seed", "Levels", "Buildings", "Entities", "Valid")
	for _, r := range runs {
		valid := "yes"
		if !r.Valid {
			valid = "no"
		}
		fmt.Printf("  %-5d  %-20s  %10.3f  %6d  %9d  %8d  %s\n", r.ID, r.CreatedAt, r.Seed, r.Levels, r.Buildings, r.Entities, valid)
	}
}
