//go:build !linux

package copier

func exchangeDirs(_, _ string) error {
	return errExchangeUnsupported
}
