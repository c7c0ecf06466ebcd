// Command sampledata writes a synthetic HR dataset in the canonical CSV
// schema, ready for `turnover train`.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/attrio/turnover/internal/domain/feature"
	"github.com/attrio/turnover/internal/synthetic"
)

func main() {
	var (
		count = flag.Int("n", 5000, "number of records to generate")
		seed  = flag.Int64("seed", 42, "random seed")
		out   = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if err := run(*count, *seed, *out); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(count int, seed int64, out string) error {
	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	records := synthetic.NewGenerator(synthetic.WithSeed(seed)).Records(count)

	cw := csv.NewWriter(w)
	header := append(feature.Names(), feature.ColLeft)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.FormatFloat(r.SatisfactionLevel, 'f', 2, 64),
			strconv.FormatFloat(r.LastEvaluation, 'f', 2, 64),
			strconv.Itoa(r.NumberProject),
			strconv.Itoa(r.AverageMonthlyHours),
			strconv.Itoa(r.TimeSpendCompany),
			boolField(r.WorkAccident),
			boolField(r.PromotionLast5Years),
			string(r.SalaryTier),
			r.Department,
			boolField(r.Left),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
