package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/renderer"
)

const (
	// maxSampleValue is the largest channel maximum a PPM header may declare
	maxSampleValue = 65535
	// MaxPixels bounds width*height so a header cannot request an unbounded framebuffer
	MaxPixels = 8192 * 8192
)

// Header describes a PPM image
type Header struct {
	Width, Height int
	MaxValue      uint32
}

// Decoder reads a P3 image token by token
type Decoder struct {
	r      *bufio.Reader
	header Header
	pixels int
}

// NewDecoder reads and validates the header
func NewDecoder(r io.Reader) (*Decoder, error) {
	d := &Decoder{r: bufio.NewReader(r)}

	magic, err := d.nextToken()
	if err != nil {
		if errors.Is(err, ErrTruncated) {
			return nil, fmt.Errorf("%w: empty input", ErrBadMagic)
		}
		return nil, err
	}
	if magic != "P3" {
		return nil, fmt.Errorf("%w: magic %q", ErrBadMagic, magic)
	}

	width, err := d.nextUint("width")
	if err != nil {
		return nil, err
	}
	height, err := d.nextUint("height")
	if err != nil {
		return nil, err
	}
	if width != 0 && height > MaxPixels/width {
		return nil, fmt.Errorf("%w: %dx%d image exceeds %d pixels", ErrBadToken, width, height, MaxPixels)
	}
	maxValue, err := d.nextUint("max value")
	if err != nil {
		return nil, err
	}
	if maxValue == 0 || maxValue > maxSampleValue {
		return nil, fmt.Errorf("%w: max value %d outside 1..%d", ErrBadToken, maxValue, maxSampleValue)
	}

	d.header = Header{Width: int(width), Height: int(height), MaxValue: uint32(maxValue)}
	return d, nil
}

// Header returns the image header
func (d *Decoder) Header() Header {
	return d.header
}

// ReadPixel reads the next pixel's raw channel values
func (d *Decoder) ReadPixel() (r, g, b uint32, err error) {
	if d.pixels >= d.header.Width*d.header.Height {
		return 0, 0, 0, io.EOF
	}

	var channels [3]uint32
	for i, name := range [3]string{"red", "green", "blue"} {
		value, err := d.nextUint(name)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("pixel %d: %w", d.pixels, err)
		}
		if value > uint64(d.header.MaxValue) {
			return 0, 0, 0, fmt.Errorf("%w: pixel %d %s %d exceeds max value %d",
				ErrBadToken, d.pixels, name, value, d.header.MaxValue)
		}
		channels[i] = uint32(value)
	}
	d.pixels++
	return channels[0], channels[1], channels[2], nil
}

// ReadColor reads the next pixel normalized by the image's max value
func (d *Decoder) ReadColor() (core.Color, error) {
	r, g, b, err := d.ReadPixel()
	if err != nil {
		return core.Color{}, err
	}
	maxValue := float64(d.header.MaxValue)
	return core.NewVec3(float64(r)/maxValue, float64(g)/maxValue, float64(b)/maxValue), nil
}

// Decode reads a whole P3 image into a framebuffer
func Decode(r io.Reader) (*renderer.Framebuffer, error) {
	d, err := NewDecoder(r)
	if err != nil {
		return nil, err
	}
	h := d.Header()
	fb := renderer.NewFramebuffer(h.Width, h.Height)

	// Rows are stored top to bottom
	for y := h.Height - 1; y >= 0; y-- {
		for x := 0; x < h.Width; x++ {
			c, err := d.ReadColor()
			if err != nil {
				return nil, err
			}
			fb.Set(x, y, c)
		}
	}
	return fb, nil
}

// DecodeFile reads a P3 image from disk
func DecodeFile(path string) (*renderer.Framebuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fb, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fb, nil
}

// nextUint reads a decimal token
func (d *Decoder) nextUint(field string) (uint64, error) {
	token, err := d.nextToken()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	value, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrBadToken, field, token)
	}
	return value, nil
}

// nextToken skips whitespace and comments and returns the next token
func (d *Decoder) nextToken() (string, error) {
	var token []byte
	for {
		c, err := d.r.ReadByte()
		if err == io.EOF {
			if len(token) > 0 {
				return string(token), nil
			}
			return "", ErrTruncated
		}
		if err != nil {
			return "", err
		}

		switch {
		case c == '#' && len(token) == 0:
			if _, err := d.r.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case isSpace(c):
			if len(token) > 0 {
				return string(token), nil
			}
		default:
			token = append(token, c)
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
