package apperrors

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrUnsupportedKind       = errors.New("unsupported dataset kind")
	ErrEmbeddingsUnsupported = errors.New("provider does not support embeddings")
)
