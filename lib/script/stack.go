package script

import (
	"github.com/pkg/errors"
)

type scrStack struct {
	data [][]byte
}

func (s *scrStack) push(d []byte) {
	s.data = append(s.data, d)
}

func (s *scrStack) pushBool(v bool) {
	if v {
		s.data = append(s.data, []byte{1})
	} else {
		s.data = append(s.data, []byte{})
	}
}

func (s *scrStack) pushInt(val int64) {
	s.data = append(s.data, EncodeNum(val))
}

func (s *scrStack) size() int {
	return len(s.data)
}

// need fails with ErrStackUnderflow unless the stack holds at least n items.
func (s *scrStack) need(n int) error {
	if len(s.data) < n {
		return errors.Wrapf(ErrStackUnderflow, "need %d, have %d", n, len(s.data))
	}
	return nil
}

// top returns the item at idx counting from the end (-1 is the top).
func (s *scrStack) top(idx int) []byte {
	return s.data[len(s.data)+idx]
}

func (s *scrStack) pop() (d []byte) {
	l := len(s.data)
	d = s.data[l-1]
	s.data = s.data[:l-1]
	return
}

func (s *scrStack) popNum() (int64, error) {
	d := s.pop()
	if len(d) > nMaxNumSize {
		return 0, errors.Wrapf(ErrNumberTooBig, "%d bytes", len(d))
	}
	return DecodeNum(d), nil
}

func (s *scrStack) popBool() bool {
	return castToBool(s.pop())
}

// remove takes out the item at idx counting from the end.
func (s *scrStack) remove(idx int) (d []byte) {
	i := len(s.data) + idx
	d = s.data[i]
	s.data = append(s.data[:i:i], s.data[i+1:]...)
	return
}
