// Package camera adapts a gocv video device to the monitor's frame source
// contract. Frames arrive in BGR at the device's native resolution, which
// stays fixed for the session.
package camera

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Source wraps a video capture device.
type Source struct {
	vc *gocv.VideoCapture
}

// Open opens the capture device with the given ID.
func Open(deviceID int) (*Source, error) {
	vc, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", deviceID, err)
	}
	return &Source{vc: vc}, nil
}

// Read fetches the next frame into dst. A false return means the frame was
// missing or corrupt; the caller skips that cycle.
func (s *Source) Read(dst *gocv.Mat) bool {
	if ok := s.vc.Read(dst); !ok {
		return false
	}
	return !dst.Empty()
}

// Close releases the device.
func (s *Source) Close() error {
	return s.vc.Close()
}
