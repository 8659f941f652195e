package main

import (
	"bytes"
	"image"
	"io"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/gravestench/d2tiled/pkg/indexed"
	"github.com/gravestench/d2tiled/pkg/spriteatlas"
)

func atlasCommand() *cli.Command {
	return &cli.Command{
		Name:  "atlas",
		Usage: "Build sprite atlases",
		Subcommands: []*cli.Command{
			{
				Name:      "pack",
				Usage:     "Pack framed sprite sheet PNGs, one per cell size, into framed definitions and an atlas PNG",
				ArgsUsage: "WxH...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "firstgid",
						Required: true,
						Usage:    "tile id of the first cell",
					},
					&cli.StringFlag{
						Name:     "packer",
						EnvVars:  []string{"D2TILED_PACKER"},
						Required: true,
						Usage:    "path to the rectangle packer",
					},
					&cli.StringFlag{
						Name:  "image-key",
						Value: spriteatlas.DefaultImageKey,
						Usage: "key of the definitions list",
					},
				},
				Action: action(atlasPack),
			},
		},
	}
}

func atlasPack(c *cli.Context, logger *log.Logger, input []byte) ([]byte, error) {
	requireArgs(c, 1)

	sizes := make([]image.Point, c.NArg())
	for i, arg := range c.Args().Slice() {
		size, err := spriteatlas.ParseCellSize(arg)
		if err != nil {
			return nil, err
		}

		sizes[i] = size
	}

	sheets, p, err := spriteatlas.ReadSheets(bytes.NewReader(input), sizes)
	if err != nil {
		return nil, err
	}

	packer := spriteatlas.ExecPacker{Path: c.String("packer")}

	atlas, err := spriteatlas.Pack(c.Context, sheets, c.Int("firstgid"), packer)
	if err != nil {
		return nil, err
	}

	logger.Printf("%d sprites", len(atlas.Defs))

	text, err := atlas.Text(c.String("image-key"))
	if err != nil {
		return nil, err
	}

	return joinText(text, func(w io.Writer) error {
		return indexed.EncodePNG(w, atlas.Image, p)
	})
}
