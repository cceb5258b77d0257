package chesspresenter

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Presenter writes formatted text and board images without coupling to the command layer.
type Presenter struct {
	out       io.Writer
	saveImage func(path string, png []byte) error
}

func NewPresenter(out io.Writer, saveImage func(path string, png []byte) error) *Presenter {
	if saveImage == nil {
		saveImage = func(path string, png []byte) error { return os.WriteFile(path, png, 0o644) }
	}
	return &Presenter{out: out, saveImage: saveImage}
}

// Board prints message and, when both are set, stores png at path.
func (p *Presenter) Board(message string, png []byte, path string) error {
	if p == nil {
		return nil
	}
	if text := strings.TrimSpace(message); text != "" && p.out != nil {
		if _, err := fmt.Fprintln(p.out, text); err != nil {
			return err
		}
	}
	if len(png) > 0 && strings.TrimSpace(path) != "" {
		if err := p.saveImage(path, png); err != nil {
			return fmt.Errorf("save board image: %w", err)
		}
	}
	return nil
}
