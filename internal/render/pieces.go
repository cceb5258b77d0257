package render

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

// Piece outlines on a 45x45 canvas. Fill and stroke are substituted per side.
var pieceShapes = map[board.Kind]string{
	board.Pawn: `<path d="M22.5 9a4 4 0 0 0-3.2 6.4A5.5 5.5 0 0 0 17 24c-2.4 1.5-4 4-4.5 7.5-1 1-2 2.5-2 5.5h24c0-3-1-4.5-2-5.5-.5-3.5-2.1-6-4.5-7.5a5.5 5.5 0 0 0-2.3-8.6A4 4 0 0 0 22.5 9z"/>`,
	board.Knight: `<path d="M22 10c10.5 1 16.5 8 16 29H15c0-9 10-6.5 8-21"/>` +
		`<path d="M24 18c.4 2.9-5.5 7.4-8 9-3 2-2.8 4.3-5 4-1-1 1.4-3 0-3-1 0 .2 1.2-1 2-1 0-4 1-4-4 0-2 6-12 6-12s1.9-1.9 2-3.5c-.7-1-.5-2-.5-3 1-1 3 2.5 3 2.5h2s.8-2 2.5-3c1 0 1 3 1 3"/>`,
	board.Bishop: `<path d="M9 36c3.4-1 10.1.4 13.5-2 3.4 2.4 10.1 1 13.5 2 0 0 1.6.5 3 2-.7 1-1.6 1-3 .5-3.4-1-10.1.5-13.5-1-3.4 1.5-10.1 0-13.5 1-1.4.5-2.3.5-3-.5 1.4-1.5 3-2 3-2z"/>` +
		`<path d="M15 32c2.5 2.5 12.5 2.5 15 0 .5-1.5 0-2 0-2 0-2.5-2.5-4-2.5-4 5.5-1.5 6-11.5-5-15.5-11 4-10.5 14-5 15.5 0 0-2.5 1.5-2.5 4 0 0-.5.5 0 2z"/>` +
		`<circle cx="22.5" cy="8" r="2.5"/>`,
	board.Rook: `<path d="M9 39h27v-3H9v3zM12 36v-4h21v4H12zM11 14V9h4v2h5V9h5v2h5V9h4v5"/>` +
		`<path d="M34 14l-3 3H14l-3-3"/>` +
		`<path d="M31 17v12.5H14V17"/>` +
		`<path d="M31 29.5l1.5 2.5h-20l1.5-2.5"/>`,
	board.Queen: `<path d="M9 26c8.5-1.5 21-1.5 27 0l2.5-12.5L31 25l-.3-14.1-5.2 13.6-3-14.5-3 14.5-5.2-13.6L14 25 6.5 13.5 9 26z"/>` +
		`<path d="M9 26c0 2 1.5 2 2.5 4 1 1.5 1 1 .5 3.5-1.5 1-1.5 2.5-1.5 2.5-1.5 1.5.5 2.5.5 2.5 6.5 1 16.5 1 23 0 0 0 1.5-1 0-2.5 0 0 .5-1.5-1-2.5-.5-2.5-.5-2 .5-3.5 1-2 2.5-2 2.5-4-8.5-1.5-18.5-1.5-27 0z"/>` +
		`<circle cx="6" cy="12" r="2"/><circle cx="14" cy="9" r="2"/><circle cx="22.5" cy="8" r="2"/><circle cx="31" cy="9" r="2"/><circle cx="39" cy="12" r="2"/>`,
	board.King: `<path d="M22.5 11.63V6M20 8h5"/>` +
		`<path d="M22.5 25s4.5-7.5 3-10.5c0 0-1-2.5-3-2.5s-3 2.5-3 2.5c-1.5 3 3 10.5 3 10.5"/>` +
		`<path d="M12.5 37c5.5 3.5 14.5 3.5 20 0v-7s9-4.5 6-10.5c-4-6.5-13.5-3.5-16 4V27v-3.5c-2.5-7.5-12-10.5-16-4-3 6 6 10.5 6 10.5v7"/>`,
}

const pieceSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">` +
	`<g style="fill: %s; stroke: %s; stroke-width:1.5; stroke-linecap:round; stroke-linejoin:round">%s</g></svg>`

func pieceSource(p board.Piece) ([]byte, error) {
	shape, ok := pieceShapes[p.Kind]
	if !ok {
		return nil, fmt.Errorf("no outline for %s", p)
	}
	fill, stroke := "#ffffff", "#000000"
	if p.Color == board.Black {
		fill, stroke = "#000000", "#ffffff"
	}
	return []byte(fmt.Sprintf(pieceSVG, fill, stroke, shape)), nil
}

type spriteKey struct {
	piece board.Piece
	size  int
}

// spriteCache holds rasterised pieces per (piece, size).
type spriteCache struct {
	mu     sync.RWMutex
	images map[spriteKey]image.Image
}

var sprites = &spriteCache{images: map[spriteKey]image.Image{}}

func (c *spriteCache) get(k spriteKey) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[k]
	return img, ok
}

// put keeps the first image stored for k and returns it.
func (c *spriteCache) put(k spriteKey, img image.Image) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.images[k]; ok {
		return prev
	}
	c.images[k] = img
	return img
}

func renderPieceImage(p board.Piece, size int) (image.Image, error) {
	k := spriteKey{piece: p, size: size}
	if img, ok := sprites.get(k); ok {
		return img, nil
	}
	img, err := rasterize(p, size)
	if err != nil {
		return nil, err
	}
	return sprites.put(k, img), nil
}

func rasterize(p board.Piece, size int) (*image.RGBA, error) {
	src, err := pieceSource(p)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG(src)))
	if err != nil {
		return nil, fmt.Errorf("parse %s outline: %w", p, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)
	return dst, nil
}

// sanitizeSVG drops the space after style keys; oksvg misreads "fill: #fff".
func sanitizeSVG(svg []byte) []byte {
	for _, key := range []string{"fill", "stroke", "stop-color"} {
		svg = bytes.ReplaceAll(svg, []byte(key+": #"), []byte(key+":#"))
	}
	return svg
}
