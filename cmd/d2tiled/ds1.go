package main

import (
	"bytes"
	"io"
	"log"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/gravestench/d2tiled/pkg/ds1"
	"github.com/gravestench/d2tiled/pkg/frame"
)

func ds1Command() *cli.Command {
	return &cli.Command{
		Name:  "ds1",
		Usage: "Work with DS1 maps",
		Subcommands: []*cli.Command{
			{
				Name:   "decode",
				Usage:  "Turn a DS1 into TOML",
				Action: action(ds1Decode),
			},
			{
				Name:   "encode",
				Usage:  "Turn TOML back into a DS1",
				Action: action(ds1Encode),
			},
			{
				Name:      "set-floor",
				Usage:     "Draw every occupied floor cell with one tile",
				ArgsUsage: "MAIN SUB",
				Action:    action(ds1SetFloor),
			},
			{
				Name:      "rule-floor",
				Usage:     "Rewrite the edge cells of the first floor layer to one main index",
				ArgsUsage: "MAIN",
				Action:    action(ds1RuleFloor),
			},
			{
				Name:   "layers",
				Usage:  "Draw the tile layers as Hangul text",
				Action: action(ds1Layers),
			},
			{
				Name:  "stats",
				Usage: "Count the tiles drawn by framed DS1s",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "skip-wall-layers",
						Usage: "ignore wall layers",
					},
					&cli.BoolFlag{
						Name:  "skip-floor-layers",
						Usage: "ignore floor layers",
					},
					&cli.StringFlag{
						Name:  "component",
						Usage: "count one cell component instead of whole tile ids: orientation, main-index or sub-index",
					},
				},
				Action: action(ds1Stats),
			},
		},
	}
}

func ds1Decode(_ *cli.Context, logger *log.Logger, input []byte) ([]byte, error) {
	d, trailing, err := ds1.FromBytes(input)
	if err != nil {
		return nil, err
	}

	logger.Printf("v%d %d", d.Version, trailing)

	return d.Text()
}

func ds1Encode(_ *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	d, err := ds1.ParseText(input)
	if err != nil {
		return nil, err
	}

	return d.Bytes()
}

func tileIndexArg(c *cli.Context, i int, name string) (uint8, error) {
	v, err := strconv.ParseUint(c.Args().Get(i), 10, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "%s index", name)
	}

	return uint8(v), nil
}

func ds1SetFloor(c *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	requireArgs(c, 2)

	mainIndex, err := tileIndexArg(c, 0, "main")
	if err != nil {
		return nil, err
	}

	subIndex, err := tileIndexArg(c, 1, "sub")
	if err != nil {
		return nil, err
	}

	d, err := ds1.ParseText(input)
	if err != nil {
		return nil, err
	}

	if err = d.SetFloor(mainIndex, subIndex); err != nil {
		return nil, err
	}

	return d.Text()
}

func ds1RuleFloor(c *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	requireArgs(c, 1)

	mainIndex, err := tileIndexArg(c, 0, "main")
	if err != nil {
		return nil, err
	}

	d, err := ds1.ParseText(input)
	if err != nil {
		return nil, err
	}

	if err = d.RuleFloor(mainIndex); err != nil {
		return nil, err
	}

	return d.Text()
}

func ds1Layers(_ *cli.Context, _ *log.Logger, input []byte) ([]byte, error) {
	d, err := ds1.ParseText(input)
	if err != nil {
		return nil, err
	}

	return []byte(d.HangulLayers()), nil
}

// ds1Counter is the tile id or component frequency table.
type ds1Counter interface {
	Add(d *ds1.DS1, filter ds1.LayerFilter)
	io.WriterTo
}

func ds1Stats(c *cli.Context, logger *log.Logger, input []byte) ([]byte, error) {
	var counter ds1Counter = ds1.TileIDFrequency{}

	if component := c.String("component"); component != "" {
		freq, err := ds1.NewComponentFrequency(ds1.Component(component))
		if err != nil {
			return nil, err
		}

		counter = freq
	}

	filter := ds1.LayerFilter{
		SkipWallLayers:  c.Bool("skip-wall-layers"),
		SkipFloorLayers: c.Bool("skip-floor-layers"),
	}

	n := 0

	err := frame.NewReader(bytes.NewReader(input)).Each(func(payload []byte) error {
		n++

		d, _, err := ds1.FromBytes(payload)
		if err != nil {
			logger.Printf("skipping file %d: %v", n, err)
			return nil
		}

		counter.Add(d, filter)

		return nil
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err = counter.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
