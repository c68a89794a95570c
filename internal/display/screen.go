package display

import (
	"fmt"
	"image"
	"log/slog"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/ayushchinmay/weatherstation/internal/sensor"
)

// Presenter renders the latest reading, or its fault, plus startup
// status text.
type Presenter interface {
	Render(r sensor.Reading)
	Message(lines ...string)
}

// Screen drives the SSD1306 panel.
type Screen struct {
	dev     *ssd1306.Dev
	rotated bool
	logger  *slog.Logger
}

// NewSSD1306 initializes the 128x64 panel on an already opened I2C
// bus. The driver fixes the panel address at 0x3C. rotated selects the
// portrait mounting.
func NewSSD1306(bus i2c.Bus, rotated bool, logger *slog.Logger) (*Screen, error) {
	opts := ssd1306.DefaultOpts
	opts.W = 128
	opts.H = 64
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("init ssd1306: %w", err)
	}
	return &Screen{dev: dev, rotated: rotated, logger: logger}, nil
}

// Render draws the reading. A draw failure is logged and contained;
// the loop carries on and the next refresh retries.
func (s *Screen) Render(r sensor.Reading) {
	if err := s.draw(formatReading(r)); err != nil {
		s.logger.Warn("display render failed", "error", err)
	}
}

// Message draws small status text, one string per row. Used during
// startup and the reset flow.
func (s *Screen) Message(lines ...string) {
	ls := make([]line, len(lines))
	for i, text := range lines {
		ls[i] = line{text: text}
	}
	if err := s.draw(ls); err != nil {
		s.logger.Warn("display message failed", "error", err)
	}
}

// Halt blanks the panel.
func (s *Screen) Halt() error { return s.dev.Halt() }

func (s *Screen) draw(lines []line) error {
	bounds := s.dev.Bounds()
	cw, ch := bounds.Dx(), bounds.Dy()
	if s.rotated {
		cw, ch = ch, cw
	}

	canvas := image1bit.NewVerticalLSB(image.Rect(0, 0, cw, ch))
	face := basicfont.Face7x13
	y := 0
	for _, ln := range lines {
		switch {
		case ln.text == "":
			y += face.Height / 2
		case ln.big:
			drawScaled(canvas, face, ln.text, y, 2)
			y += 2 * face.Height
		default:
			d := font.Drawer{
				Dst:  canvas,
				Src:  &image.Uniform{image1bit.On},
				Face: face,
				Dot:  fixed.P(0, y+face.Ascent),
			}
			d.DrawString(ln.text)
			y += face.Height
		}
	}

	var out image.Image = canvas
	if s.rotated {
		out = rotate90(canvas, bounds)
	}
	return s.dev.Draw(bounds, out, image.Point{})
}

// drawScaled renders text at the given scale by drawing it small and
// resampling with nearest-neighbor, which keeps the 1-bit pixels crisp.
func drawScaled(dst *image1bit.VerticalLSB, face *basicfont.Face, text string, y, scale int) {
	w := font.MeasureString(face, text).Ceil()
	small := image.NewGray(image.Rect(0, 0, w, face.Height))
	d := font.Drawer{
		Dst:  small,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	dr := image.Rect(0, y, w*scale, y+face.Height*scale)
	xdraw.NearestNeighbor.Scale(dst, dr, small, small.Bounds(), xdraw.Over, nil)
}

// rotate90 maps the portrait canvas onto the landscape panel.
func rotate90(src *image1bit.VerticalLSB, panel image.Rectangle) *image1bit.VerticalLSB {
	dst := image1bit.NewVerticalLSB(panel)
	w, h := panel.Dx(), panel.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, y, src.At(y, w-1-x))
		}
	}
	return dst
}

// Null is a Presenter for stations without a panel.
type Null struct{}

// Render implements Presenter.
func (Null) Render(sensor.Reading) {}

// Message implements Presenter.
func (Null) Message(...string) {}
