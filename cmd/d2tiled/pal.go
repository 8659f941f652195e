package main

import (
	"bytes"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/gravestench/d2tiled/pkg/indexed"
	"github.com/gravestench/d2tiled/pkg/palette"
)

func palCommand() *cli.Command {
	return &cli.Command{
		Name:  "pal",
		Usage: "Work with 768-byte palettes",
		Subcommands: []*cli.Command{
			{
				Name:   "swap",
				Usage:  "Swap the red and blue byte of every entry",
				Action: action(palSwap),
			},
			{
				Name:  "inverse",
				Usage: "Build the 16 MiB inverse palette of an RGB palette",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "zstd",
						Usage: "compress the table",
					},
				},
				Action: action(palInverse),
			},
			{
				Name:  "quantize",
				Usage: "Derive a palette from a truecolour PNG",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "method",
						Value: string(palette.MethodMedianCut),
						Usage: "colour reduction: median-cut, kmeans or dominant",
					},
				},
				Action: action(palQuantize),
			},
			{
				Name:   "dump",
				Usage:  "Render a palette as TOML",
				Action: action(palDump),
			},
			{
				Name:   "load",
				Usage:  "Read a palette back from TOML",
				Action: action(palLoad),
			},
		},
	}
}

func palSwap(_ *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	p, err := palette.FromBytes(input)
	if err != nil {
		return nil, err
	}

	p.Swap()

	return p[:], nil
}

func palInverse(c *cli.Context, logger *log.Logger, input []byte) ([]byte, error) {
	p, err := palette.FromBytes(input)
	if err != nil {
		return nil, err
	}

	entries := p.Entries()

	inv, err := palette.BuildInverse(entries)
	if err != nil {
		return nil, err
	}

	test, err := inv.Validate(entries, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return nil, err
	}

	logger.Printf("checked %v -> %d", test, inv.Lookup(test.R, test.G, test.B))

	if !c.Bool("zstd") {
		return inv[:], nil
	}

	var buf bytes.Buffer
	if err = inv.Compress(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func palQuantize(c *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	img, err := indexed.DecodeRGBA(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	p, err := palette.Quantize(img, palette.Method(c.String("method")))
	if err != nil {
		return nil, err
	}

	return p[:], nil
}

func palDump(_ *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	p, err := palette.FromBytes(input)
	if err != nil {
		return nil, err
	}

	return p.Text()
}

func palLoad(_ *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	var p palette.Palette

	if err := p.ParseText(input); err != nil {
		return nil, err
	}

	return p[:], nil
}

func pngCommand() *cli.Command {
	return &cli.Command{
		Name:  "png",
		Usage: "Work with PNG images",
		Subcommands: []*cli.Command{
			{
				Name:  "index",
				Usage: "Index a truecolour PNG; input is the palette, its inverse unless --inverse is given, then the PNG",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "inverse",
						Usage: "read the inverse palette, raw or zstd compressed, from `FILE`",
					},
				},
				Action: action(pngIndex),
			},
		},
	}
}

func pngIndex(c *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	p, rest, err := splitPalette(input)
	if err != nil {
		return nil, err
	}

	var inv *palette.Inverse

	if name := c.Path("inverse"); name != "" {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		if inv, err = palette.ReadInverse(data); err != nil {
			return nil, errors.Wrap(err, name)
		}
	} else {
		if len(rest) < palette.CubeVolume {
			return nil, errors.Errorf("inverse palette cut short at %d bytes", len(rest))
		}

		if inv, err = palette.InverseFromBytes(rest[:palette.CubeVolume]); err != nil {
			return nil, err
		}

		rest = rest[palette.CubeVolume:]
	}

	img, err := indexed.DecodeRGBA(bytes.NewReader(rest))
	if err != nil {
		return nil, err
	}

	return indexed.PNGBytes(inv.IndexImage(img), p.Color())
}
