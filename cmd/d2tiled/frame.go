package main

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/gravestench/d2tiled/pkg/frame"
)

func listFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "list",
		Usage: "read more file names, one per line, from `FILE`",
	}
}

func frameCommand() *cli.Command {
	return &cli.Command{
		Name:  "frame",
		Usage: "Join and split length-prefixed frames",
		Subcommands: []*cli.Command{
			{
				Name:      "cat",
				Usage:     "Write every file as one frame",
				ArgsUsage: "FILE...",
				Flags:     []cli.Flag{listFlag()},
				Action: func(c *cli.Context) error {
					names, err := fileNames(c)
					if err != nil {
						return cli.Exit(err, 1)
					}

					var buf bytes.Buffer
					if err = frame.Cat(&buf, names); err != nil {
						return cli.Exit(err, 1)
					}

					if _, err = c.App.Writer.Write(buf.Bytes()); err != nil {
						return cli.Exit(err, 1)
					}

					return nil
				},
			},
			{
				Name:      "split",
				Usage:     "Write one frame to every file and the rest to standard output",
				ArgsUsage: "FILE...",
				Flags:     []cli.Flag{listFlag()},
				Action: func(c *cli.Context) error {
					names, err := fileNames(c)
					if err != nil {
						return cli.Exit(err, 1)
					}

					var rest bytes.Buffer
					if err = frame.Split(c.App.Reader, names, &rest); err != nil {
						return cli.Exit(err, 1)
					}

					if _, err = c.App.Writer.Write(rest.Bytes()); err != nil {
						return cli.Exit(err, 1)
					}

					return nil
				},
			},
		},
	}
}

func fileNames(c *cli.Context) ([]string, error) {
	names := c.Args().Slice()

	if list := c.String("list"); list != "" {
		f, err := os.Open(list)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		defer f.Close()

		more, err := frame.Names(f)
		if err != nil {
			return nil, err
		}

		names = append(names, more...)
	}

	if len(names) == 0 {
		return nil, errors.New("no files named")
	}

	return names, nil
}
