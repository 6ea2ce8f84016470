package extract

import (
	"context"
	"errors"
)

// Entity is one raw (name, quantity) pair produced by the extraction backend
// before any normalization. Quantity may be empty.
type Entity struct {
	Name     string
	Quantity string
}

// Extractor turns free text into raw ingredient entities. The schema is
// fixed: the service only ever extracts name/quantity pairs. Implementations
// are the remote extraction API client and the in-process ONNX backend.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
	Close() error
}

// ErrUnavailable reports that the extraction backend could not be acquired:
// missing model files, missing tokenizer, or bad configuration. Handlers map
// it to a 500 with the underlying message.
var ErrUnavailable = errors.New("extraction backend unavailable")
