// Package region extracts connected leaf regions from a cleaned plant mask.
package region

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Region is one connected component of mask-true pixels.
type Region struct {
	// Area is the contour area in pixels as reported by OpenCV.
	Area   float64
	Bounds image.Rectangle
}

// Leaf is a surviving region labeled in detection order. Labels identify
// leaves within a single frame's overlay only; they are not stable across
// frames.
type Leaf struct {
	Region
	Label string
}

// Extraction is the per-frame result of region extraction.
type Extraction struct {
	Leaves []Leaf

	// Envelope is the minimal box enclosing all surviving leaf bounds,
	// zero when Found is false. Built from the filtered regions rather
	// than the raw mask so noise blobs cannot inflate plant height.
	Envelope image.Rectangle
	Found    bool
}

// FromMask finds the external contours of the mask and returns one Region
// per connected component, unfiltered.
func FromMask(mask gocv.Mat) []Region {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		regions = append(regions, Region{
			Area:   gocv.ContourArea(contours.At(i)),
			Bounds: gocv.BoundingRect(contours.At(i)),
		})
	}
	return regions
}

// Filter discards regions below the minimum area. The boundary is
// inclusive: a region of exactly minArea survives.
func Filter(regions []Region, minArea float64) []Region {
	kept := regions[:0:0]
	for _, r := range regions {
		if r.Area >= minArea {
			kept = append(kept, r)
		}
	}
	return kept
}

// Leaves tags surviving regions with ordinal labels L1, L2, ...
//
// Any region that survives morphological cleanup and the area filter is
// counted as a leaf, including a stem fragment large enough to pass both;
// the mask's hue window and the erode/dilate passes are the only
// stem-versus-leaf discrimination.
func Leaves(regions []Region) []Leaf {
	leaves := make([]Leaf, len(regions))
	for i, r := range regions {
		leaves[i] = Leaf{Region: r, Label: fmt.Sprintf("L%d", i+1)}
	}
	return leaves
}

// Envelope returns the union of the regions' bounding boxes. ok is false
// when there are no regions, in which case no plant was detected.
func Envelope(regions []Region) (env image.Rectangle, ok bool) {
	for _, r := range regions {
		if !ok {
			env = r.Bounds
			ok = true
			continue
		}
		env = env.Union(r.Bounds)
	}
	return env, ok
}

// Extract runs the full path: contours, inclusive area filter, leaf
// labeling, and the whole-plant envelope.
func Extract(mask gocv.Mat, minArea float64) Extraction {
	surviving := Filter(FromMask(mask), minArea)
	env, found := Envelope(surviving)
	return Extraction{
		Leaves:   Leaves(surviving),
		Envelope: env,
		Found:    found,
	}
}
