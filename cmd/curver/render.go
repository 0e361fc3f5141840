package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/being-motion/spline/internal/content"
	"github.com/being-motion/spline/internal/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "render NAME OUT.png",
		Short: "Draw a motion into a PNG image",
		Long:  `Render draws a motion with its knots and handles. OUT may be "-" for standard output.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContent(func(c *content.Content) error {
				curve, err := c.Load(args[0])
				if err != nil {
					return err
				}
				if args[1] != "-" {
					return render.SavePNG(args[1], curve, width, height)
				}
				if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
					return errors.New("refusing to write an image to a terminal")
				}
				dc, err := render.Draw(curve, width, height, render.Options{Handles: true, Labels: true})
				if err != nil {
					return err
				}
				if err := dc.EncodePNG(cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("encode image: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 800, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 400, "image height in pixels")
	return cmd
}
