// Package render draws board positions as PNG images.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	imagedraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

// Highlight marks the last move played.
type Highlight struct {
	From  board.Square
	To    board.Square
	Mover board.Color
}

type Options struct {
	Highlight *Highlight
	// Flip draws the board from black's side.
	Flip bool
}

type Renderer interface {
	RenderPNG(ctx context.Context, b board.Board, opts Options) ([]byte, error)
}

type pngRenderer struct {
	squareSize int
}

func NewRenderer() Renderer {
	return &pngRenderer{squareSize: 64}
}

// NewRendererSize returns a renderer with the given square edge in pixels.
func NewRendererSize(squareSize int) Renderer {
	if squareSize < 16 {
		squareSize = 16
	}
	return &pngRenderer{squareSize: squareSize}
}

func (r *pngRenderer) RenderPNG(ctx context.Context, b board.Board, opts Options) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("board is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	squareSize := r.squareSize
	margin := squareSize / 2
	boardSize := squareSize * 8
	origin := image.Point{X: margin, Y: margin / 2}
	img := image.NewRGBA(image.Rect(0, 0, boardSize+margin*2, boardSize+margin+margin/2))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	v := view{size: squareSize, origin: origin, flip: opts.Flip}
	drawSquares(img, v)
	drawHighlight(img, v, opts.Highlight)
	if err := drawPieces(img, b, v); err != nil {
		return nil, err
	}
	if err := drawCoordinates(img, v, margin); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	lightSquare             = color.RGBA{233, 207, 163, 255}
	darkSquare              = color.RGBA{187, 136, 96, 255}
	backgroundColor         = color.RGBA{28, 31, 46, 255}
	whiteMoveHighlightFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	coordinateTextColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// view maps squares to pixels.
type view struct {
	size   int
	origin image.Point
	flip   bool
}

func (v view) rect(sq board.Square) image.Rectangle {
	col, row := sq.File(), 7-sq.Rank()
	if v.flip {
		col, row = 7-col, 7-row
	}
	x := v.origin.X + col*v.size
	y := v.origin.Y + row*v.size
	return image.Rect(x, y, x+v.size, y+v.size)
}

func (v view) center(sq board.Square) pointF {
	r := v.rect(sq)
	return pointF{X: float64(r.Min.X + v.size/2), Y: float64(r.Min.Y + v.size/2)}
}

func squareColor(sq board.Square) color.Color {
	if (sq.File()+sq.Rank())%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func drawSquares(dst imagedraw.Image, v view) {
	for sq := board.Square(0); sq < 64; sq++ {
		imagedraw.Draw(dst, v.rect(sq), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
	}
}

func drawPieces(dst imagedraw.Image, b board.Board, v view) error {
	for sq := board.Square(0); sq < 64; sq++ {
		p := b.PieceAt(sq)
		if p.IsZero() {
			continue
		}
		pimg, err := renderPieceImage(p, v.size)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, v.rect(sq), pimg, image.Point{}, imagedraw.Over)
	}
	return nil
}

// White moves get filled squares, black moves an arrow.
func drawHighlight(img *image.RGBA, v view, h *Highlight) {
	if h == nil || !h.From.Valid() || !h.To.Valid() {
		return
	}
	if h.Mover == board.White {
		drawSquareOverlay(img, v, h.From, whiteMoveHighlightFill)
		drawSquareOverlay(img, v, h.To, whiteMoveHighlightFill)
		return
	}
	drawArrow(img, v, h.From, h.To, blackMoveHighlightArrow)
}

func drawSquareOverlay(img *image.RGBA, v view, sq board.Square, clr color.Color) {
	imagedraw.Draw(img, v.rect(sq), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, v view, from, to board.Square, clr color.Color) {
	if from == to {
		return
	}
	start, end := v.center(from), v.center(to)
	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	size := float64(v.size)
	baseLength := length - size*0.45
	if baseLength < size*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := size * 0.18
	headWidth := size * 0.32
	base := pointF{X: start.X + dirX*baseLength, Y: start.Y + dirY*baseLength}

	offset := func(p pointF, w float64) pointF {
		return pointF{X: p.X + perpX*w, Y: p.Y + perpY*w}
	}
	fillQuad(img,
		offset(start, -halfWidth), offset(start, halfWidth),
		offset(base, halfWidth), offset(base, -halfWidth), clr)
	fillTriangle(img, end, offset(base, -headWidth), offset(base, headWidth), clr)
}

var (
	captionOnce sync.Once
	captionFace font.Face
	captionErr  error
)

func caption() (font.Face, error) {
	captionOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			captionErr = fmt.Errorf("parse caption font: %w", err)
			return
		}
		captionFace, captionErr = opentype.NewFace(f, &opentype.FaceOptions{Size: 14, DPI: 72, Hinting: font.HintingFull})
	})
	return captionFace, captionErr
}

func drawCoordinates(dst imagedraw.Image, v view, margin int) error {
	face, err := caption()
	if err != nil {
		return err
	}
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()

	for i := 0; i < 8; i++ {
		rankSq := board.NewSquare(0, i)
		r := v.rect(rankSq)
		drawCenteredText(drawer, fmt.Sprint(i+1), v.origin.X-margin/2, r.Min.Y+v.size/2+ascent/2)

		fileSq := board.NewSquare(i, 0)
		f := v.rect(fileSq)
		drawCenteredText(drawer, string(rune('a'+i)), f.Min.X+v.size/2, v.origin.Y+8*v.size+ascent+2)
	}
	return nil
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

type pointF struct {
	X float64
	Y float64
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangle(img, p0, p1, p2, clr)
	fillTriangle(img, p0, p2, p3, clr)
}

func fillTriangle(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if inTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func inTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 0xffff - sa
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*inv/0xffff) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*inv/0xffff) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*inv/0xffff) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*inv/0xffff) >> 8),
	})
}
