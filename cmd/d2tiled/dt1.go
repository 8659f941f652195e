package main

import (
	"bytes"
	"io"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/gravestench/d2tiled/pkg/dt1"
	"github.com/gravestench/d2tiled/pkg/frame"
	"github.com/gravestench/d2tiled/pkg/indexed"
	"github.com/gravestench/d2tiled/pkg/tileatlas"
)

func dt1Command() *cli.Command {
	return &cli.Command{
		Name:  "dt1",
		Usage: "Work with DT1 tilesets",
		Subcommands: []*cli.Command{
			{
				Name:  "decode",
				Usage: "Turn an RGB palette followed by a DT1 into framed TOML and a tile atlas PNG",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "zealous",
						Usage: "trim transparent rows off every tile",
					},
				},
				Action: action(dt1Decode),
			},
			{
				Name:   "encode",
				Usage:  "Turn framed TOML and a tile atlas PNG back into a DT1",
				Action: action(dt1Encode),
			},
			{
				Name:   "repack",
				Usage:  "Rewrite a DT1 with freshly computed offsets",
				Action: action(dt1Repack),
			},
			{
				Name:   "stats",
				Usage:  "Count the palette indices painted by framed DT1s",
				Action: action(dt1Stats),
			},
		},
	}
}

func dt1Decode(c *cli.Context, logger *log.Logger, input []byte) ([]byte, error) {
	p, data, err := splitPalette(input)
	if err != nil {
		return nil, err
	}

	d, err := dt1.FromBytes(data)
	if err != nil {
		return nil, err
	}

	atlas, columns, err := tileatlas.Decode(d, tileatlas.Options{Zealous: c.Bool("zealous")})
	if err != nil {
		return nil, err
	}

	tileHeight, atlasHeight := maxHeights(d)
	logger.Printf("[%d, %d]; lastColumnHeight = %d, maxTileHeight = %d, maxAtlasHeight = %d",
		atlas.Width, atlas.Height, columns.LastColumnHeight, tileHeight, atlasHeight)

	text, err := d.Text()
	if err != nil {
		return nil, err
	}

	return joinText(text, func(w io.Writer) error {
		return indexed.EncodePNG(w, atlas, p.Color())
	})
}

// maxHeights returns the tallest stored tile height and the tallest atlas
// slot.
func maxHeights(d *dt1.DT1) (tile, atlas int32) {
	for _, t := range d.Tiles {
		tile = max(tile, t.AbsHeight())
		atlas = max(atlas, t.AtlasHeight)
	}

	return tile, atlas
}

func dt1Encode(_ *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	text, rest, err := splitText(input)
	if err != nil {
		return nil, err
	}

	d, err := dt1.ParseText(text)
	if err != nil {
		return nil, err
	}

	atlas, _, err := indexed.DecodePNG(rest)
	if err != nil {
		return nil, err
	}

	blocks, err := tileatlas.Encode(d, atlas)
	if err != nil {
		return nil, err
	}

	return d.Bytes(blocks)
}

func dt1Repack(_ *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	d, err := dt1.FromBytes(input)
	if err != nil {
		return nil, err
	}

	return d.Bytes(dt1.RawBlocks{})
}

func dt1Stats(_ *cli.Context, logger *log.Logger, input []byte) ([]byte, error) {
	var freq dt1.IndexFrequency

	n := 0

	err := frame.NewReader(bytes.NewReader(input)).Each(func(payload []byte) error {
		n++

		d, err := dt1.FromBytes(payload)
		if err == nil {
			err = freq.Add(d)
		}

		if err != nil {
			logger.Printf("skipping file %d: %v", n, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err = freq.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
