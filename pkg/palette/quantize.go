package palette

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/pkg/errors"
)

// Method selects the colour reduction used by Quantize.
type Method string

const (
	MethodMedianCut Method = "median-cut"
	MethodKMeans    Method = "kmeans"
	MethodDominant  Method = "dominant"
)

// Methods lists the accepted quantization methods.
var Methods = []Method{MethodMedianCut, MethodKMeans, MethodDominant}

const (
	// opaque entries available after reserving the transparent index
	maxOpaque = NumColors - 1

	kmeansMaxSamples = 12000
)

// Quantize derives a palette from a truecolour image. Entry 0 stays the
// transparent colour and the reduced colours fill entries from 1 upward;
// remaining entries are black.
func Quantize(img image.Image, method Method) (p Palette, err error) {
	var colors []color.Color

	switch method {
	case MethodMedianCut, "":
		q := quantize.MedianCutQuantizer{}
		for _, c := range q.Quantize(make(color.Palette, 0, maxOpaque), img) {
			colors = append(colors, c)
		}
	case MethodKMeans:
		if colors, err = kmeansColors(img, maxOpaque); err != nil {
			return p, err
		}
	case MethodDominant:
		for _, c := range dominantcolor.FindWeight(img, maxOpaque) {
			colors = append(colors, c.RGBA)
		}
	default:
		return p, errors.Errorf("unknown quantization method %q", method)
	}

	if len(colors) == 0 {
		return p, errors.New("image yielded no colours")
	}

	for i, c := range colors {
		if i == maxOpaque {
			break
		}

		cf, _ := colorful.MakeColor(c)
		r, g, b := cf.Clamped().RGB255()
		p.Set(uint8(i+1), RGB{r, g, b})
	}

	return p, nil
}

func kmeansColors(img image.Image, k int) ([]color.Color, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	if width == 0 || height == 0 {
		return nil, errors.New("empty image")
	}

	step := 1
	if width*height > kmeansMaxSamples {
		step = int(math.Sqrt(float64(width*height)/kmeansMaxSamples)) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, kmeansMaxSamples))

	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}

			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 0xffff,
				float64(g16) / 0xffff,
				float64(b16) / 0xffff,
			})
		}
	}

	if len(dataset) == 0 {
		return nil, errors.New("image has no opaque pixels")
	}

	km := kmeans.New()

	cc, err := km.Partition(dataset, min(k, len(dataset)))
	if err != nil {
		return nil, errors.Wrap(err, "partitioning colours")
	}

	// most populated clusters first
	sort.SliceStable(cc, func(i, j int) bool {
		return len(cc[i].Observations) > len(cc[j].Observations)
	})

	colors := make([]color.Color, 0, len(cc))

	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}

		colors = append(colors, colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped())
	}

	return colors, nil
}
