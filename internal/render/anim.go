package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"io"

	"epigrid/internal/sims/sir"

	"github.com/icza/mjpeg"
)

// ErrNoFrames is returned when an animation is requested for an empty frame list.
var ErrNoFrames = errors.New("no frames to encode")

// AnimOptions controls frame size and playback rate.
type AnimOptions struct {
	Scale  int
	FPS    int
	Labels bool
}

func (o AnimOptions) normalized() AnimOptions {
	if o.Scale < 1 {
		o.Scale = 1
	}
	if o.FPS < 1 {
		o.FPS = 10
	}
	return o
}

// FrameImage renders one snapshot. With a label, a band under the grid holds
// the t/S/I/R line.
func FrameImage(f sir.Frame, scale int, label bool) *image.Paletted {
	if scale < 1 {
		scale = 1
	}
	w, h := f.Grid.Cols*scale, f.Grid.Rows*scale
	if label {
		h += LabelBand
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), Palette)
	paintGrid(img, f.Grid, scale)
	if label {
		band := img.Pix[img.PixOffset(0, f.Grid.Rows*scale):]
		for i := range band {
			band[i] = uint8(len(Palette) - 2)
		}
		DrawLabel(img, 2, h-4, StatsLabel(f.T, f.Grid.Counts()), TextColor)
	}
	return img
}

// WriteGIF encodes frames as a looping animated GIF.
func WriteGIF(w io.Writer, frames []sir.Frame, opts AnimOptions) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	opts = opts.normalized()
	delay := 100 / opts.FPS
	if delay < 1 {
		delay = 1
	}
	anim := &gif.GIF{}
	for _, f := range frames {
		anim.Image = append(anim.Image, FrameImage(f, opts.Scale, opts.Labels))
		anim.Delay = append(anim.Delay, delay)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// WriteMJPEG writes frames to an MJPEG AVI file at path.
func WriteMJPEG(path string, frames []sir.Frame, opts AnimOptions) (err error) {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	opts = opts.normalized()
	first := FrameImage(frames[0], opts.Scale, opts.Labels)
	size := first.Bounds().Size()

	aw, err := mjpeg.New(path, int32(size.X), int32(size.Y), int32(opts.FPS))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := aw.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	var buf bytes.Buffer
	jpegOpts := &jpeg.Options{Quality: 90}
	for k, f := range frames {
		img := first
		if k > 0 {
			img = FrameImage(f, opts.Scale, opts.Labels)
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, img, jpegOpts); err != nil {
			return fmt.Errorf("encode frame t=%d: %w", f.T, err)
		}
		if err := aw.AddFrame(buf.Bytes()); err != nil {
			return fmt.Errorf("add frame t=%d: %w", f.T, err)
		}
	}
	return nil
}
