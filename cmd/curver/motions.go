package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/being-motion/spline/internal/content"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List motions, most recently modified first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContent(func(c *content.Content) error {
				motions, err := c.List()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tDEGREE\tKNOTS\tSTART\tEND")
				for _, m := range motions {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%g\n",
						m.Name, m.Curve.Degree(), m.Curve.KnotCount(), m.Curve.Start(), m.Curve.End())
				}
				return tw.Flush()
			})
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var samples int
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a motion as JSON, or sampled values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContent(func(c *content.Content) error {
				curve, err := c.Load(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if samples > 0 {
					for _, pt := range curve.Sample(samples) {
						fmt.Fprintf(out, "%g\t%g\n", pt.X, pt.Y)
					}
					return nil
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(curve)
			})
		},
	}
	cmd.Flags().IntVarP(&samples, "samples", "n", 0, "print n evenly spaced samples instead of JSON")
	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a flat motion under a free name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContent(func(c *content.Content) error {
				m, err := c.Create()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), m.Name)
				return nil
			})
		},
	}
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv OLD NEW",
		Short: "Rename a motion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContent(func(c *content.Content) error {
				return c.Rename(args[0], args[1])
			})
		},
	}
}

func newCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cp NAME",
		Short: "Duplicate a motion under a free name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContent(func(c *content.Content) error {
				dup, err := c.Duplicate(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dup)
				return nil
			})
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME...",
		Short: "Delete motions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContent(func(c *content.Content) error {
				for _, name := range args {
					if err := c.Delete(name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
