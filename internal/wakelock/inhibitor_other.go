//go:build !linux

package wakelock

// NewInhibitor always fails outside Linux.
func NewInhibitor(string) (Inhibitor, error) {
	return nil, ErrUnsupported
}
