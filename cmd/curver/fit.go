package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/being-motion/spline"
	"github.com/being-motion/spline/internal/content"
)

func newFitCmd(a *app) *cobra.Command {
	var opts spline.FitOptions
	cmd := &cobra.Command{
		Use:   "fit FILE NAME",
		Short: "Fit a motion to a recorded trajectory",
		Long: `Fit reads time,value pairs from a CSV file ("-" for standard input) and
stores the fitted cubic curve under NAME. A header line is skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			samples, err := readSamples(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			fitOpts := a.cfg.Fit.Options()
			if cmd.Flags().Changed("tolerance") {
				fitOpts.Tolerance = opts.Tolerance
			}
			if cmd.Flags().Changed("max-knots") {
				fitOpts.MaxKnots = opts.MaxKnots
			}
			return a.withContent(func(c *content.Content) error {
				curve, err := c.Fit(args[1], samples, fitOpts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "fitted %d samples with %d knots\n", len(samples), curve.KnotCount())
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 0, "largest allowed deviation from the samples")
	cmd.Flags().IntVar(&opts.MaxKnots, "max-knots", 0, "largest number of knots")
	return cmd
}

// readSamples parses CSV records of time and value. A first record that
// does not parse is taken as a header.
func readSamples(r io.Reader) ([]spline.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var samples []spline.Point
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return samples, nil
		}
		if err != nil {
			return nil, err
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err := errors.Join(errX, errY); err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, spline.Pt(x, y))
	}
}
