// Command leaftest runs the measurement pipeline once on a still image and
// prints the detected leaves.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"gocv.io/x/gocv"

	_ "golang.org/x/image/tiff"

	"plant-monitor/internal/calib"
	"plant-monitor/internal/config"
	"plant-monitor/internal/measure"
	"plant-monitor/internal/region"
	"plant-monitor/internal/segment"
)

func main() {
	imagePath := flag.String("image", "", "Path to plant image (TIFF, PNG, or JPEG)")
	configPath := flag.String("config", "", "Path to JSON config file")
	refWidth := flag.Float64("refwidth", 0, "Reference object width in mm (overrides config)")
	outPath := flag.String("out", "", "Write the annotated image here")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: leaftest -image <path> [-config cfg.json] [-refwidth 10] [-out annotated.png]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *refWidth > 0 {
		cfg.ReferenceWidthMM = *refWidth
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}

	frame := matFromImage(img)
	defer frame.Close()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, frame.Cols(), frame.Rows())

	st, ref, err := calib.Calibrate(frame, cfg.CalibParams())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Calibrated: %.2f px/mm (reference %d px wide, %.1f mm)\n",
		st.RatioPxPerMM, ref.Bounds.Dx(), cfg.ReferenceWidthMM)

	mask := segment.Mask(frame, cfg.SegmentParams())
	defer mask.Close()

	ex := region.Extract(mask, cfg.MinLeafAreaPixels)
	m := measure.Build(ex, st, time.Now())

	fmt.Printf("\nDetected %d leaves:\n", m.LeafCount)
	fmt.Printf("%-6s %10s %12s %18s\n", "Leaf", "Area px", "Area mm2", "Bounds")
	for _, lf := range m.Leaves {
		fmt.Printf("%-6s %10.1f %12.2f %18v\n",
			lf.Label, lf.Area, measure.LeafAreaMM2(lf, st), lf.Bounds)
	}
	fmt.Printf("\nHeight: %.2f mm\nTotal leaf area: %.2f mm2\n", m.HeightMM, m.TotalLeafAreaMM2)

	if *outPath != "" {
		annotated := measure.Annotate(frame, m, &ref)
		defer annotated.Close()
		if ok := gocv.IMWrite(*outPath, annotated); !ok {
			fmt.Fprintf(os.Stderr, "Failed to write %s\n", *outPath)
			os.Exit(1)
		}
		fmt.Printf("Annotated image written to %s\n", *outPath)
	}
}

// matFromImage converts a decoded Go image to a BGR Mat.
func matFromImage(src image.Image) gocv.Mat {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat
}
