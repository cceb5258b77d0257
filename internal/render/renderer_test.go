package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

func TestRenderPNGDecodes(t *testing.T) {
	g := board.New()
	r := NewRendererSize(32)
	data, err := r.RenderPNG(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 8 squares plus a half-square margin each side horizontally.
	if got := img.Bounds().Dx(); got != 32*8+32 {
		t.Fatalf("width = %d", got)
	}
}

func TestRenderHighlightChangesSquares(t *testing.T) {
	g := board.New()
	r := NewRendererSize(32)
	plain, err := r.RenderPNG(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	e2, _ := board.ParseSquare("e2")
	e4, _ := board.ParseSquare("e4")
	for _, mover := range []board.Color{board.White, board.Black} {
		marked, err := r.RenderPNG(context.Background(), g, Options{Highlight: &Highlight{From: e2, To: e4, Mover: mover}})
		if err != nil {
			t.Fatalf("RenderPNG(%v): %v", mover, err)
		}
		if bytes.Equal(plain, marked) {
			t.Fatalf("highlight for %v left the image unchanged", mover)
		}
	}
}

func TestFlipMovesSquares(t *testing.T) {
	v := view{size: 10}
	a1, _ := board.ParseSquare("a1")
	if got := v.rect(a1).Min; got.X != 0 || got.Y != 70 {
		t.Fatalf("a1 at %v", got)
	}
	v.flip = true
	if got := v.rect(a1).Min; got.X != 70 || got.Y != 0 {
		t.Fatalf("flipped a1 at %v", got)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRenderer().RenderPNG(ctx, board.New(), Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestRenderPieceCached(t *testing.T) {
	p := board.Piece{Kind: board.Queen, Color: board.Black}
	a, err := renderPieceImage(p, 24)
	if err != nil {
		t.Fatalf("renderPieceImage: %v", err)
	}
	b, _ := renderPieceImage(p, 24)
	if a != b {
		t.Fatalf("piece image not cached")
	}
}
