package audio

import "context"

// unavailableSource backs the placeholder types of backends compiled out by build tags.
type unavailableSource struct{}

func (unavailableSource) ReadFrame(context.Context) ([]byte, error) { return nil, ErrSourceClosed }
func (unavailableSource) Name() string                              { return "unavailable" }
func (unavailableSource) Close() error                              { return nil }
