package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/being-motion/spline"
	"github.com/being-motion/spline/internal/content"
	"github.com/being-motion/spline/internal/render"
)

// editMotion loads a motion into an editor, applies fn and stores the
// result if fn changed the curve.
func (a *app) editMotion(name string, opts []spline.Option, fn func(e *spline.Editor) error) (*spline.BPoly, error) {
	var result *spline.BPoly
	err := a.withContent(func(c *content.Content) error {
		curve, err := c.Load(name)
		if err != nil {
			return err
		}
		opts = append(a.cfg.Editor.Options(), opts...)
		e := spline.NewEditor(append(opts, spline.WithLogger(a.logger))...)
		if err := e.Load(curve); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		result = e.Current()
		if !e.Undoable() {
			a.logger.Info("motion unchanged", slog.String("name", name))
			return nil
		}
		return c.Save(name, result)
	})
	return result, err
}

func newDragCmd(a *app) *cobra.Command {
	var (
		knot, segment, cp int
		dx, dy            float64
		c1, snap          bool
		at                string
		pixels            bool
		width, height     int
	)
	cmd := &cobra.Command{
		Use:   "drag NAME",
		Short: "Move a knot or control point of a motion",
		Long: `Drag moves one handle as a single gesture. Select a knot with --knot,
or a control point with --segment and --cp (1 or 2), or pick the handle under
a pixel of the rendered image with --at X,Y. Control points only move
vertically. With --pixels the offsets are measured on the rendered image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := spline.KnotTarget(knot)
			if knot < 0 {
				target = spline.ControlTarget(segment, cp)
			}
			var atPixel spline.Point
			if at != "" {
				if _, err := fmt.Sscanf(at, "%g,%g", &atPixel.X, &atPixel.Y); err != nil {
					return fmt.Errorf("invalid pixel %q: %w", at, err)
				}
			}
			var opts []spline.Option
			if cmd.Flags().Changed("c1") {
				opts = append(opts, spline.WithC1(c1))
			}
			if cmd.Flags().Changed("snap") {
				opts = append(opts, spline.WithSnapping(snap))
			}
			curve, err := a.editMotion(args[0], opts, func(e *spline.Editor) error {
				if at != "" {
					t, ok := render.HandleAt(e.Current(), width, height, atPixel)
					if !ok {
						return fmt.Errorf("no handle at %s", atPixel)
					}
					target = t
				}
				delta := spline.Vec(dx, dy)
				if pixels {
					var err error
					if delta, err = render.DataDelta(e.Current(), width, height, delta); err != nil {
						return err
					}
				}
				s, err := e.BeginDrag()
				if err != nil {
					return err
				}
				if err := s.Apply(target, delta); err != nil {
					s.Cancel()
					return err
				}
				_, err = s.End()
				return err
			})
			if err != nil {
				return err
			}
			pt, err := handlePoint(curve, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s\n", target, pt)
			return nil
		},
	}
	cmd.Flags().IntVar(&knot, "knot", -1, "knot to move")
	cmd.Flags().IntVar(&segment, "segment", 0, "segment of the control point to move")
	cmd.Flags().IntVar(&cp, "cp", spline.FirstCP, "control point to move: 1 or 2")
	cmd.Flags().Float64Var(&dx, "dx", 0, "horizontal offset")
	cmd.Flags().Float64Var(&dy, "dy", 0, "vertical offset")
	cmd.Flags().BoolVar(&c1, "c1", true, "keep the slope continuous")
	cmd.Flags().BoolVar(&snap, "snap", false, "snap to nearby values")
	cmd.Flags().StringVar(&at, "at", "", "move the handle drawn at pixel X,Y")
	cmd.Flags().BoolVar(&pixels, "pixels", false, "read --dx and --dy as pixels")
	cmd.Flags().IntVar(&width, "width", 800, "width of the image --at and --pixels refer to")
	cmd.Flags().IntVar(&height, "height", 400, "height of the image --at and --pixels refer to")
	return cmd
}

func handlePoint(curve *spline.BPoly, t spline.Target) (spline.Point, error) {
	if t.Kind == spline.KnotHandle {
		return curve.KnotPoint(t.Index)
	}
	return curve.Point(t.Segment, t.Index)
}

func newInsertKnotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert-knot NAME TIME",
		Short: "Split a segment without changing the motion's shape",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid time %q: %w", args[1], err)
			}
			curve, err := a.editMotion(args[0], nil, func(e *spline.Editor) error {
				return e.InsertKnot(x)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d knots\n", curve.KnotCount())
			return nil
		},
	}
}

func newRemoveKnotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-knot NAME INDEX",
		Short: "Remove a knot, merging its two segments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid knot index %q: %w", args[1], err)
			}
			curve, err := a.editMotion(args[0], nil, func(e *spline.Editor) error {
				return e.RemoveKnot(i)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d knots\n", curve.KnotCount())
			return nil
		},
	}
}
