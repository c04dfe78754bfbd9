//go:build windows

package encoder

// CreatePipes is a no-op on Windows; the stages hand off through regular
// files instead.
func (s *StreamSet) CreatePipes(bool) error {
	return nil
}
