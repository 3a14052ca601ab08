//go:build !malgo

package audio

import "errors"

const malgoCompiled = false

// MalgoSource is unavailable in builds without the malgo tag.
type MalgoSource struct{ unavailableSource }

// OpenMalgo reports that the binary was built without miniaudio support.
func OpenMalgo() (*MalgoSource, error) {
	return nil, errors.New("malgo backend not compiled in (rebuild with -tags malgo)")
}
