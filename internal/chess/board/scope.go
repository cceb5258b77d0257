package board

import "errors"

// Scope records hypothetical changes made to a Board and undoes them in
// reverse order on Close.
type Scope struct {
	b    Board
	undo []func() error
}

func Enter(b Board) *Scope { return &Scope{b: b} }

func (s *Scope) Board() Board { return s.b }

func (s *Scope) Apply(m Move) error {
	if err := s.b.ApplyMove(m); err != nil {
		return err
	}
	s.undo = append(s.undo, func() error { return s.b.RevertMove(m) })
	return nil
}

func (s *Scope) Skip() error {
	if err := s.b.SkipTurn(); err != nil {
		return err
	}
	s.undo = append(s.undo, s.b.UndoSkipTurn)
	return nil
}

// Close reverts every recorded change, newest first. It is safe to call twice.
func (s *Scope) Close() error {
	var errs []error
	for i := len(s.undo) - 1; i >= 0; i-- {
		if err := s.undo[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.undo = nil
	return errors.Join(errs...)
}

// Within runs fn inside a fresh scope and always restores the board, whether
// fn returns normally, fails or panics.
func Within(b Board, fn func(*Scope) error) (err error) {
	s := Enter(b)
	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(s)
}
