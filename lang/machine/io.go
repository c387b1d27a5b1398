package machine

import (
	"bufio"
	"io"
)

// IO bundles the injectable sinks Print and Scan read from and write to.
// A zero IO falls back to no stdin (Scan always fails to read) and a
// discarding stdout.
type IO struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

func (s *IO) ensureScanner() *bufio.Scanner {
	if s.scanner == nil {
		in := s.In
		if in == nil {
			in = io.LimitReader(nil, 0)
		}
		s.scanner = bufio.NewScanner(in)
	}
	return s.scanner
}

// readLine reads one line, stripping its trailing newline, as required by
// IO(Scan). io.EOF is returned once no more lines remain.
func (s *IO) readLine() (string, error) {
	sc := s.ensureScanner()
	if sc.Scan() {
		return sc.Text(), nil
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// writeLine writes text followed by a single newline, as required by
// IO(Print).
func (s *IO) writeLine(text string) error {
	out := s.Out
	if out == nil {
		out = io.Discard
	}
	_, err := io.WriteString(out, text+"\n")
	return err
}
