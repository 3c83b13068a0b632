package card

import (
	"errors"
	"fmt"
)

// Pipeline runs normalize, recognize and assemble with an injected
// recognizer. It holds no per-request state and is safe for concurrent use
// as long as the recognizer is.
type Pipeline struct {
	recognizer Recognizer
}

// NewPipeline returns a Pipeline backed by r.
func NewPipeline(r Recognizer) *Pipeline {
	return &Pipeline{recognizer: r}
}

// Extract turns raw card text into a Record. The only failure is a
// recognizer fault, which is returned wrapped and never retried.
func (p *Pipeline) Extract(raw string) (Record, error) {
	if p.recognizer == nil {
		return Record{}, errors.New("card: pipeline has no recognizer")
	}
	normalized := Normalize(raw)
	entities, err := p.recognizer.Recognize(normalized)
	if err != nil {
		return Record{}, fmt.Errorf("recognize entities: %w", err)
	}
	return Assemble(entities, normalized, raw), nil
}
