package main

import (
	"bytes"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/gravestench/d2tiled/pkg/frame"
	"github.com/gravestench/d2tiled/pkg/palette"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "d2tiled"
	app.Usage = "Convert DT1 tilesets and DS1 maps to and from Tiled friendly forms"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		palCommand(),
		pngCommand(),
		dt1Command(),
		ds1Command(),
		tilesCommand(),
		atlasCommand(),
		frameCommand(),
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// transform reads the whole of standard input and returns what to write to
// standard output.
type transform func(c *cli.Context, logger *log.Logger, input []byte) ([]byte, error)

// action runs fn with a logger honouring --verbose. Output is written only
// once fn has succeeded.
func action(fn transform) cli.ActionFunc {
	return func(c *cli.Context) error {
		logger := log.New(io.Discard, "", 0)
		if c.Bool("verbose") {
			logger.SetOutput(c.App.ErrWriter)
		}

		input, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return cli.Exit(err, 1)
		}

		output, err := fn(c, logger, input)
		if err != nil {
			return cli.Exit(err, 1)
		}

		if _, err = c.App.Writer.Write(output); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	}
}

func requireArgs(c *cli.Context, n int) {
	if c.NArg() < n {
		cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
	}
}

// splitPalette cuts a 768-byte palette off the front of input.
func splitPalette(input []byte) (palette.Palette, []byte, error) {
	if len(input) < palette.Size {
		return palette.Palette{}, nil, errors.Errorf("input of %d bytes has no palette", len(input))
	}

	p, err := palette.FromBytes(input[:palette.Size])

	return p, input[palette.Size:], err
}

// splitText reads the framed text at the front of input and returns it with
// whatever follows.
func splitText(input []byte) ([]byte, io.Reader, error) {
	fr := frame.NewReader(bytes.NewReader(input))

	text, err := fr.Next()
	if err == io.EOF {
		return nil, nil, errors.New("empty input")
	}

	if err != nil {
		return nil, nil, err
	}

	return text, fr, nil
}

// joinText frames text and appends the rest.
func joinText(text []byte, rest func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer

	if err := frame.NewWriter(&buf).WriteFrame(text); err != nil {
		return nil, err
	}

	if err := rest(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
