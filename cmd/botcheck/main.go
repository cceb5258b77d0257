package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/park285/cheese-heuristic-bot/internal/botclient"
	"github.com/park285/cheese-heuristic-bot/pkg/chessdto"
)

func main() {
	baseURL := os.Getenv("BOT_BASE_URL")
	if baseURL == "" {
		log.Fatal("BOT_BASE_URL is required")
	}
	preset := os.Getenv("BOT_PRESET")

	client := botclient.NewClient(baseURL,
		botclient.WithTimeout(8*time.Second),
		botclient.WithRetry(2),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		log.Fatalf("/healthz error: %v", err)
	}
	log.Println("/healthz ok")

	move, err := client.Move(ctx, chessdto.MoveRequest{Preset: preset, Explain: true})
	if err != nil {
		log.Printf("/v1/move error: %v", err)
	} else if move.Move != nil {
		log.Printf("/v1/move ok: %s (%s) outcome=%s elapsed=%dms", move.Move.SAN, move.Move.UCI, move.Move.Outcome, move.Move.ElapsedMS)
	}

	game, err := client.StartGame(ctx, chessdto.StartGameRequest{BotSide: "black", Preset: preset})
	if err != nil {
		log.Printf("/v1/games error: %v", err)
	} else {
		reply, err := client.Play(ctx, game.Game.ID, "e2e4")
		if err != nil {
			log.Printf("/v1/games/%s/play error: %v", game.Game.ID, err)
		} else if reply.Reply != nil {
			log.Printf("/v1/games/%s/play ok: e4 answered with %s", game.Game.ID, reply.Reply.SAN)
		}
	}

	png, err := client.RenderFEN(ctx, "")
	if err != nil {
		log.Printf("/v1/render error: %v", err)
		return
	}
	log.Printf("/v1/render ok: %d bytes", len(png))
}
