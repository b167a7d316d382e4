package pdfdoc

import (
	"fmt"
	"strconv"
)

// Position is where page numbers are drawn.
type Position string

const (
	TopLeft      Position = "top-left"
	TopCenter    Position = "top-center"
	TopRight     Position = "top-right"
	BottomLeft   Position = "bottom-left"
	BottomCenter Position = "bottom-center"
	BottomRight  Position = "bottom-right"
)

// Positions lists the accepted page number positions.
var Positions = []Position{TopLeft, TopCenter, TopRight, BottomLeft, BottomCenter, BottomRight}

// anchor maps a Position to a pdfcpu anchor and an offset in points that
// keeps the text 30pt from the top/bottom edge and 30pt (left) or 50pt
// (right) from the side.
func (p Position) anchor() (string, string, error) {
	switch p {
	case TopLeft:
		return "tl", "30 -30", nil
	case TopCenter:
		return "tc", "0 -30", nil
	case TopRight:
		return "tr", "-50 -30", nil
	case BottomLeft:
		return "bl", "30 30", nil
	case BottomCenter, "":
		return "bc", "0 30", nil
	case BottomRight:
		return "br", "-50 30", nil
	}
	return "", "", fmt.Errorf("%w: unknown position %q", ErrInvalidParameter, p)
}

// ParsePosition validates a position name; empty means bottom-center.
func ParsePosition(s string) (Position, error) {
	p := Position(s)
	if p == "" {
		return BottomCenter, nil
	}
	if _, _, err := p.anchor(); err != nil {
		return "", err
	}
	return p, nil
}

// watermarkDesc is a 40pt gray diagonal stamp drawn at the page center.
func watermarkDesc(opacityPercent int) string {
	return fmt.Sprintf("fontname:Helvetica, points:40, scalefactor:1 abs, rotation:-45, fillcolor:#808080, opacity:%s",
		formatOpacity(opacityPercent))
}

// pageNumberDesc is a 12pt dark gray label at the given position.
func pageNumberDesc(p Position) (string, error) {
	pos, off, err := p.anchor()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("fontname:Helvetica, points:12, scalefactor:1 abs, rotation:0, fillcolor:#4d4d4d, position:%s, offset:%s", pos, off), nil
}

// headerDesc and footerDesc center 10pt text 20pt from the top or bottom.
func headerDesc() string {
	return "fontname:Helvetica, points:10, scalefactor:1 abs, rotation:0, fillcolor:#333333, position:tc, offset:0 -20"
}

func footerDesc() string {
	return "fontname:Helvetica, points:10, scalefactor:1 abs, rotation:0, fillcolor:#333333, position:bc, offset:0 20"
}

func formatOpacity(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return strconv.FormatFloat(float64(percent)/100, 'f', 2, 64)
}
