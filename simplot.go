/*
Copyright © 2024 the SimPlot authors.
This file is part of SimPlot.

SimPlot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SimPlot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SimPlot.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package simplot generates geometrically optimized simulation plots from
// polygon datasets. For each source polygon it searches over the position,
// rotation, and aspect ratio of a regularly shaped plot (square, circle,
// rectangle, or ellipse) of equal area, maximizing the area of overlap
// between the plot and the polygon. It also creates regular point grids
// inside the resulting plots and attaches raster-derived statistics to
// plots and points.
package simplot

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Version gives the version number of this copy of SimPlot.
const Version = "0.1.0"

// Shape specifies the geometric form of a simulation plot.
type Shape int

const (
	// ShapeSquare is a square plot with side length sqrt(area).
	ShapeSquare Shape = iota
	// ShapeRectangle is a rectangular plot with side lengths derived from
	// the source polygon perimeter.
	ShapeRectangle
	// ShapeCircle is a circular plot with diameter 2*sqrt(area/π).
	ShapeCircle
	// ShapeEllipse is an elliptical plot with axis lengths derived from
	// the source polygon perimeter.
	ShapeEllipse
	// ShapeBest runs the optimization once per shape and keeps the shape
	// with the highest overlap score. Ties go to the shape listed first
	// above.
	ShapeBest
)

func (s Shape) String() string {
	switch s {
	case ShapeSquare:
		return "square"
	case ShapeRectangle:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	case ShapeEllipse:
		return "ellipse"
	case ShapeBest:
		return "best"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseShape converts a shape name to a Shape. Valid names are
// "square", "rectangle", "circle", "ellipse", and "best".
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return ShapeSquare, nil
	case "rectangle":
		return ShapeRectangle, nil
	case "circle":
		return ShapeCircle, nil
	case "ellipse":
		return ShapeEllipse, nil
	case "best":
		return ShapeBest, nil
	default:
		return -1, fmt.Errorf("simplot: invalid plot shape '%s'", s)
	}
}

// Position specifies where the initial plot is anchored relative to its
// source polygon.
type Position int

const (
	// PositionBBox anchors the plot at the center of the polygon's
	// axis-aligned bounding box.
	PositionBBox Position = iota
	// PositionCentroid anchors the plot at the polygon centroid.
	PositionCentroid
	// PositionMeanXY anchors the plot at the arithmetic mean of the
	// polygon vertex coordinates.
	PositionMeanXY
)

func (p Position) String() string {
	switch p {
	case PositionBBox:
		return "bbox"
	case PositionCentroid:
		return "centroid"
	case PositionMeanXY:
		return "meanxy"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParsePosition converts a position name to a Position. Valid names are
// "bbox", "centroid", and "meanxy".
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bbox", "bounding box":
		return PositionBBox, nil
	case "centroid":
		return PositionCentroid, nil
	case "meanxy", "mean coordinates":
		return PositionMeanXY, nil
	default:
		return -1, fmt.Errorf("simplot: invalid plot position '%s'", s)
	}
}

// Placement specifies which plot parameters the optimizer may vary.
type Placement int

const (
	// PlacementFixed keeps the initial placement unchanged.
	PlacementFixed Placement = iota
	// PlacementTranslated varies only the plot position.
	PlacementTranslated
	// PlacementRotated varies only the plot rotation.
	PlacementRotated
	// PlacementResized varies only the plot aspect ratio, holding area
	// fixed.
	PlacementResized
	// PlacementOptimized jointly varies position, rotation, and aspect
	// ratio.
	PlacementOptimized
)

func (p Placement) String() string {
	switch p {
	case PlacementFixed:
		return "fixed"
	case PlacementTranslated:
		return "translated"
	case PlacementRotated:
		return "rotated"
	case PlacementResized:
		return "resized"
	case PlacementOptimized:
		return "optimized"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParsePlacement converts a placement name to a Placement. Valid names are
// "fixed", "translated", "rotated", "resized", and "optimized".
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return PlacementFixed, nil
	case "translated":
		return PlacementTranslated, nil
	case "rotated":
		return PlacementRotated, nil
	case "resized":
		return PlacementResized, nil
	case "optimized":
		return PlacementOptimized, nil
	default:
		return -1, fmt.Errorf("simplot: invalid plot placement '%s'", s)
	}
}

// Error kinds recorded per polygon ID in PlotSet.Failures. Batch
// cancellation is reported separately through the context error.
var (
	// ErrInvalidGeometry means a source polygon is degenerate: nil, fewer
	// than 3 distinct vertices, zero area, or non-finite coordinates.
	ErrInvalidGeometry = errors.New("simplot: invalid source geometry")

	// ErrNoFeasiblePlacement means no plot of positive area can be
	// constructed for a source polygon.
	ErrNoFeasiblePlacement = errors.New("simplot: no feasible plot placement")
)

// Config holds the plot generation settings. It is passed by value into
// the Generator and the optimizer; there is no global state.
type Config struct {
	// Shape is the plot shape to generate.
	Shape Shape

	// Position anchors the initial plot.
	Position Position

	// Placement selects the parameters the optimizer may vary.
	Placement Placement

	// MaxIterations is the maximum number of random perturbations
	// evaluated per search.
	MaxIterations int

	// TranslateFrac is the maximum single-step translation distance as a
	// fraction of the plot dimensions.
	TranslateFrac float64

	// MaxRotate is the maximum single-step rotation in radians.
	MaxRotate float64

	// ResizeFrac is the maximum single-step relative change in the plot
	// aspect ratio.
	ResizeFrac float64

	// SideRatioMax caps the ratio of the long to the short plot side.
	SideRatioMax float64

	// StepDecay shrinks the perturbation neighborhood after each
	// non-improving iteration. It must be in (0, 1].
	StepDecay float64

	// ConvergenceTol stops the search when the overlap score has improved
	// by less than this amount over the last ConvergenceWindow iterations.
	ConvergenceTol float64

	// ConvergenceWindow is the number of iterations between convergence
	// checks.
	ConvergenceWindow int

	// Restarts is the number of independent searches run per polygon in
	// optimized placement. Searches after the first start from a random
	// rotation.
	Restarts int

	// RandomSeed seeds the random number generator. Runs with equal
	// inputs and seeds produce identical results.
	RandomSeed int64
}

// DefaultConfig returns the default plot generation settings.
func DefaultConfig() Config {
	return Config{
		Shape:             ShapeSquare,
		Position:          PositionBBox,
		Placement:         PlacementOptimized,
		MaxIterations:     750,
		TranslateFrac:     0.10,
		MaxRotate:         25 * math.Pi / 180,
		ResizeFrac:        0.15,
		SideRatioMax:      4,
		StepDecay:         0.95,
		ConvergenceTol:    1e-9,
		ConvergenceWindow: 25,
		Restarts:          4,
		RandomSeed:        1,
	}
}

// valid checks c for settings that would make the search misbehave.
func (c Config) valid() error {
	if c.Shape < ShapeSquare || c.Shape > ShapeBest {
		return fmt.Errorf("simplot: invalid plot shape '%d'", int(c.Shape))
	}
	if c.Position < PositionBBox || c.Position > PositionMeanXY {
		return fmt.Errorf("simplot: invalid plot position '%d'", int(c.Position))
	}
	if c.Placement < PlacementFixed || c.Placement > PlacementOptimized {
		return fmt.Errorf("simplot: invalid plot placement '%d'", int(c.Placement))
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("simplot: negative iteration count %d", c.MaxIterations)
	}
	if c.TranslateFrac < 0 || c.ResizeFrac < 0 || c.MaxRotate < 0 {
		return fmt.Errorf("simplot: perturbation limits must not be negative")
	}
	if c.SideRatioMax < 1 {
		return fmt.Errorf("simplot: side ratio cap %g is less than 1", c.SideRatioMax)
	}
	if c.StepDecay <= 0 || c.StepDecay > 1 {
		return fmt.Errorf("simplot: step decay %g outside (0, 1]", c.StepDecay)
	}
	if c.ConvergenceTol < 0 {
		return fmt.Errorf("simplot: negative convergence tolerance %g", c.ConvergenceTol)
	}
	if c.ConvergenceWindow < 1 {
		return fmt.Errorf("simplot: convergence window %d is less than 1", c.ConvergenceWindow)
	}
	if c.Restarts < 1 {
		return fmt.Errorf("simplot: restart count %d is less than 1", c.Restarts)
	}
	return nil
}
