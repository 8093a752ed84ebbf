package mime

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

const (
	HTML = "text/html"

	sniffLimit = 3072
)

type UnexpectedTypeError struct {
	Got  string
	Want string
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("expected %s content, got %s", e.Want, e.Got)
}

// Detect sniffs the type of r without consuming it. The returned reader yields
// the full content.
func Detect(r io.Reader) (*mimetype.MIME, io.Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, sniffLimit)
	}

	peeked, err := br.Peek(sniffLimit)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, err
	}

	return mimetype.Detect(peeked), br, nil
}

// Require fails unless r holds content of type want or one of its subtypes.
func Require(r io.Reader, want string) (io.Reader, error) {
	mtype, br, err := Detect(r)
	if err != nil {
		return nil, err
	}

	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(want) {
			return br, nil
		}
	}

	return nil, &UnexpectedTypeError{Got: mtype.String(), Want: want}
}
