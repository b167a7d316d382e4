package pdfdoc

import (
	"log/slog"
)

// BatchOptions are applied in order: rotation first, then the watermark.
// Zero values skip a step.
type BatchOptions struct {
	Rotation  int
	Watermark WatermarkOptions
}

// HasOperations reports whether the batch would change anything.
func (o BatchOptions) HasOperations() bool {
	return o.Rotation%360 != 0 || o.Watermark.Text != ""
}

// NamedDocument is one file of a batch.
type NamedDocument struct {
	Name string
	Data []byte
}

// BatchResult is the output for the document at the same index.
type BatchResult struct {
	Name string
	Data []byte
	Err  error
}

// Batch applies opts to every document independently. A failing document
// is reported in its result and does not stop the rest.
func (p *Processor) Batch(docs []NamedDocument, opts BatchOptions) []BatchResult {
	results := make([]BatchResult, len(docs))
	for i, doc := range docs {
		data, err := p.batchOne(doc.Data, opts)
		results[i] = BatchResult{Name: doc.Name, Data: data, Err: err}
		if err != nil {
			slog.Warn("Batch document failed", "name", doc.Name, "err", err)
		}
	}
	return results
}

func (p *Processor) batchOne(doc []byte, opts BatchOptions) ([]byte, error) {
	out := doc
	var err error
	if opts.Rotation%360 != 0 {
		if out, err = p.Rotate(out, opts.Rotation); err != nil {
			return nil, err
		}
	}
	if opts.Watermark.Text != "" {
		if out, err = p.Watermark(out, opts.Watermark); err != nil {
			return nil, err
		}
	}
	return out, nil
}
