/*
Package spriteatlas cuts indexed sprite sheets into cells and packs the
non-empty part of every cell into one atlas image.

Every cell of every sheet, empty or not, consumes one tile id, counting from
the first id in reading order. Each packed sprite is described by a
definition [gid, x, y, w, h, offsetX, offsetY], where the offset moves the
trimmed sprite back to where it was drawn relative to the centre of a
background tile the size of the first sheet's cells.
*/
package spriteatlas

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/gravestench/d2tiled/pkg/frame"
	"github.com/gravestench/d2tiled/pkg/indexed"
)

// DefaultImageKey is the key the definitions are filed under.
const DefaultImageKey = "_.png"

// Sheet is a sprite sheet divided into cells of CellSize.
type Sheet struct {
	Image    *indexed.Image
	CellSize image.Point
}

// Def places one sprite in the atlas.
type Def struct {
	GID    int
	Rect   image.Rectangle
	Offset image.Point
}

// Values is the definition as written out.
func (d Def) Values() [7]int {
	return [7]int{d.GID, d.Rect.Min.X, d.Rect.Min.Y, d.Rect.Dx(), d.Rect.Dy(), d.Offset.X, d.Offset.Y}
}

// Atlas is the packed image and its definitions, in tile id order.
type Atlas struct {
	Image *indexed.Image
	Defs  []Def
}

// Text renders the definitions as TOML under key.
func (a *Atlas) Text(key string) ([]byte, error) {
	values := make([][7]int, len(a.Defs))
	for i, def := range a.Defs {
		values[i] = def.Values()
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string][][7]int{key: values}); err != nil {
		return nil, errors.Wrap(err, "encoding atlas definitions")
	}

	return buf.Bytes(), nil
}

// ParseCellSize reads a "WxH" cell size.
func ParseCellSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return image.Point{}, errors.Errorf("cell size %q is not WxH", s)
	}

	width, err := strconv.Atoi(w)
	if err != nil {
		return image.Point{}, errors.Wrapf(err, "cell size %q", s)
	}

	height, err := strconv.Atoi(h)
	if err != nil {
		return image.Point{}, errors.Wrapf(err, "cell size %q", s)
	}

	if width <= 0 || height <= 0 {
		return image.Point{}, errors.Errorf("cell size %q is empty", s)
	}

	return image.Pt(width, height), nil
}

// ReadSheets reads one framed indexed PNG per cell size. All sheets must
// share a palette, which is returned.
func ReadSheets(r io.Reader, cellSizes []image.Point) ([]Sheet, color.Palette, error) {
	var (
		fr     = frame.NewReader(r)
		sheets = make([]Sheet, 0, len(cellSizes))
		pal    color.Palette
	)

	for i, size := range cellSizes {
		payload, err := fr.Next()
		if err == io.EOF {
			return nil, nil, errors.Errorf("%d sheets for %d cell sizes", i, len(cellSizes))
		}

		if err != nil {
			return nil, nil, errors.Wrapf(err, "sheet %d", i)
		}

		img, p, err := indexed.DecodePNG(bytes.NewReader(payload))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "sheet %d", i)
		}

		if i == 0 {
			pal = p
		} else if !samePalette(pal, p) {
			return nil, nil, errors.Errorf("sheet %d has a different palette", i)
		}

		sheets = append(sheets, Sheet{Image: img, CellSize: size})
	}

	return sheets, pal, nil
}

func samePalette(a, b color.Palette) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if color.NRGBAModel.Convert(a[i]) != color.NRGBAModel.Convert(b[i]) {
			return false
		}
	}

	return true
}

type sprite struct {
	sheet int
	def   Def
}

// cut trims every cell of the sheets to its bounding rectangle. Rects of
// the returned sprites are still in sheet coordinates.
func cut(sheets []Sheet, firstGID int) ([]sprite, error) {
	if len(sheets) == 0 {
		return nil, errors.New("no sheets")
	}

	var (
		sprites []sprite
		gid     = firstGID
		center  = sheets[0].CellSize.Div(2)
	)

	for i, sheet := range sheets {
		size := sheet.CellSize
		if size.X <= 0 || size.Y <= 0 {
			return nil, errors.Errorf("sheet %d: cell size %v", i, size)
		}

		if sheet.Image.Width%size.X != 0 || sheet.Image.Height%size.Y != 0 {
			return nil, errors.Errorf("sheet %d: %dx%d is not a whole number of %dx%d cells",
				i, sheet.Image.Width, sheet.Image.Height, size.X, size.Y)
		}

		offset := size.Sub(center)

		for y := 0; y < sheet.Image.Height; y += size.Y {
			for x := 0; x < sheet.Image.Width; x += size.X {
				cell := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x, y).Add(size)}

				if r, ok := sheet.Image.BoundingRectangle(cell); ok {
					sprites = append(sprites, sprite{sheet: i, def: Def{
						GID:    gid,
						Rect:   r,
						Offset: offset.Add(cell.Min.Sub(r.Min)),
					}})
				}

				gid++
			}
		}
	}

	return sprites, nil
}

// Pack cuts the sheets into sprites, asks packer where to put them and
// draws them into a new atlas just large enough to hold every placement.
func Pack(ctx context.Context, sheets []Sheet, firstGID int, packer Packer) (*Atlas, error) {
	sprites, err := cut(sheets, firstGID)
	if err != nil {
		return nil, err
	}

	sizes := make([]image.Point, len(sprites))
	for i, s := range sprites {
		sizes[i] = s.def.Rect.Size()
	}

	points, err := packer.Pack(ctx, sizes)
	if err != nil {
		return nil, errors.Wrap(err, "packing sprites")
	}

	if len(points) != len(sprites) {
		return nil, errors.Errorf("packer placed %d of %d sprites", len(points), len(sprites))
	}

	var bounds image.Point
	for i, p := range points {
		if p.X < 0 || p.Y < 0 {
			return nil, errors.Errorf("sprite %d placed at %v", i, p)
		}

		bounds.X = max(bounds.X, p.X+sizes[i].X)
		bounds.Y = max(bounds.Y, p.Y+sizes[i].Y)
	}

	atlas := &Atlas{Image: indexed.New(bounds.X, bounds.Y), Defs: make([]Def, len(sprites))}

	for i, s := range sprites {
		if err = atlas.Image.Blit(points[i], sheets[s.sheet].Image, s.def.Rect); err != nil {
			return nil, errors.Wrapf(err, "sprite %d", s.def.GID)
		}

		def := s.def
		def.Rect = image.Rectangle{Min: points[i], Max: points[i].Add(sizes[i])}
		atlas.Defs[i] = def
	}

	return atlas, nil
}
