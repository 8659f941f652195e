package main

import (
	"bytes"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/gravestench/d2tiled/pkg/dt1"
	"github.com/gravestench/d2tiled/pkg/indexed"
	"github.com/gravestench/d2tiled/pkg/tileatlas"
)

func tilesCommand() *cli.Command {
	return &cli.Command{
		Name:  "tiles",
		Usage: "Rearrange tile atlas PNGs",
		Subcommands: []*cli.Command{
			{
				Name:   "grid",
				Usage:  "Lay the tiles of framed TOML and its atlas PNG out in a grid of equal cells",
				Action: action(tilesGrid),
			},
			{
				Name:   "noisy-square",
				Usage:  "Fold every floor diamond of a PNG into a square",
				Action: action(pngTransform(tileatlas.NoisySquare)),
			},
			{
				Name:   "rhomb-pack",
				Usage:  "Interlock the columns of floor diamonds of a PNG",
				Action: action(pngTransform(tileatlas.RhombPack)),
			},
		},
	}
}

func tilesGrid(_ *cli.Context, logger *log.Logger, input []byte) ([]byte, error) {
	text, rest, err := splitText(input)
	if err != nil {
		return nil, err
	}

	d, err := dt1.ParseText(text)
	if err != nil {
		return nil, err
	}

	atlas, p, err := indexed.DecodePNG(rest)
	if err != nil {
		return nil, err
	}

	grid, cellHeight, err := tileatlas.Grid(d, atlas)
	if err != nil {
		return nil, err
	}

	logger.Printf(`"tileheight":%d`, cellHeight)

	return indexed.PNGBytes(grid, p)
}

func pngTransform(fn func(*indexed.Image) (*indexed.Image, error)) transform {
	return func(_ *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
		src, p, err := indexed.DecodePNG(bytes.NewReader(input))
		if err != nil {
			return nil, err
		}

		dst, err := fn(src)
		if err != nil {
			return nil, err
		}

		return indexed.PNGBytes(dst, p)
	}
}
