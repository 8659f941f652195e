package spriteatlas

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Packer places rectangles of the given sizes and returns their top-left
// corners in the same order.
type Packer interface {
	Pack(ctx context.Context, sizes []image.Point) ([]image.Point, error)
}

// ExecPacker runs an external rectangle packer. It writes one "w h" line per
// rectangle to the packer's standard input and reads one "x y" line per
// rectangle from its standard output.
type ExecPacker struct {
	Path string
	Args []string
}

// Pack implements Packer.
func (p ExecPacker) Pack(ctx context.Context, sizes []image.Point) ([]image.Point, error) {
	var stdin, stdout, stderr bytes.Buffer

	for _, size := range sizes {
		fmt.Fprintf(&stdin, "%d %d\n", size.X, size.Y)
	}

	cmd := exec.CommandContext(ctx, p.Path, p.Args...)
	cmd.Stdin = &stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "%s: %s", p.Path, strings.TrimSpace(stderr.String()))
	}

	points, err := parsePoints(&stdout)
	if err != nil {
		return nil, errors.Wrap(err, p.Path)
	}

	return points, nil
}

func parsePoints(r *bytes.Buffer) ([]image.Point, error) {
	var points []image.Point

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if len(fields) != 2 {
			return nil, errors.Errorf("line %d: want \"x y\", got %q", line, scanner.Text())
		}

		x, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		y, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		points = append(points, image.Pt(x, y))
	}

	return points, errors.WithStack(scanner.Err())
}
