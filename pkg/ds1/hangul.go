package ds1

import (
	"strings"
)

const (
	hangulBase      = '\uac00'
	hangulMedialMax = 20
	hangulFinals    = 28
	hangulMedials   = hangulMedialMax + 1
	hangulEmptyCell = '\u3164'
	hangulRowEnd    = ",\n"
	hangulLayerEnd  = "\n"
)

// HangulLayers draws every wall and floor layer as text, one Hangul syllable
// per cell: the orientation picks the initial consonant, the main index
// (capped at 20) the vowel and the sub index the final consonant. Empty
// cells are U+3164. Every row ends with ",\n" and every layer with "\n".
func (d *DS1) HangulLayers() string {
	var sb strings.Builder

	width := int(d.XMax) + 1

	d.eachTileLayer(LayerFilter{}, func(i int, wall bool) {
		for j, cell := range d.Layers[i] {
			sb.WriteRune(d.hangulCell(i, j, wall, cell))

			if (j+1)%width == 0 {
				sb.WriteString(hangulRowEnd)
			}
		}

		sb.WriteString(hangulLayerEnd)
	})

	return sb.String()
}

func (d *DS1) hangulCell(i, j int, wall bool, cell Cell) rune {
	if !cell.Occupied() {
		return hangulEmptyCell
	}

	initial := rune(d.orientationAt(i, j, wall))
	medial := rune(min(cell.MainIndex(), hangulMedialMax))
	final := rune(cell.SubIndex())

	return hangulBase + initial*hangulMedials*hangulFinals + medial*hangulFinals + final
}
