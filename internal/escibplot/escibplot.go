// Package escibplot renders a PNG scatter plot of a clustering result,
// one color per cluster ID and a neutral gray for noise/border points
// outside any surviving cluster. It is a supplemented feature
// (SPEC_FULL.md §11/§12): none of the three core CLI programs require
// it, but the auxiliary escib-report tool uses it to visualize a
// previously written run.
package escibplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tingli3/escib/internal/geometry"
)

// noiseColor marks points with label <= 0 (noise, or candidate-core
// points never assigned to a surviving cluster).
var noiseColor = color.RGBA{R: 160, G: 160, B: 160, A: 255}

// Save writes a scatter plot of pts (colored by labels) to path as a PNG.
// labels must be the same length as pts and follow the cluster package's
// convention: <= 0 is noise, >= 1 is a cluster id.
func Save(path, title string, pts []geometry.Point, labels []int) error {
	if len(pts) != len(labels) {
		return fmt.Errorf("escibplot: %d points but %d labels", len(pts), len(labels))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	byCluster := make(map[int]plotter.XYs)
	maxCluster := 0
	for i, l := range labels {
		key := l
		if l < 0 {
			key = 0
		}
		if key > maxCluster {
			maxCluster = key
		}
		byCluster[key] = append(byCluster[key], struct{ X, Y float64 }{pts[i].X, pts[i].Y})
	}

	colors := clusterColors(maxCluster)
	for key, xys := range byCluster {
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("escibplot: new scatter: %w", err)
		}
		sc.GlyphStyle.Radius = vg.Points(2)
		if key == 0 {
			sc.GlyphStyle.Color = noiseColor
		} else {
			sc.GlyphStyle.Color = colors[key-1]
		}
		p.Add(sc)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("escibplot: save %s: %w", path, err)
	}
	return nil
}

// clusterColors generates n visually distinct colors by stepping evenly
// around the HSL hue wheel (grounded on the teacher's
// internal/lidar/monitor.generateColors).
func clusterColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	rf := hueToRGB(p, q, h+1.0/3.0)
	gf := hueToRGB(p, q, h)
	bf := hueToRGB(p, q, h-1.0/3.0)
	return uint8(math.Round(rf * 255)), uint8(math.Round(gf * 255)), uint8(math.Round(bf * 255))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
