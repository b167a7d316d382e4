package pdfdoc

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"github.com/lehigh-university-libraries/pdfscan/internal/pagerange"
)

// Tool names accepted by Run.
const (
	ToolMerge        = "merge"
	ToolSplit        = "split"
	ToolRotate       = "rotate"
	ToolExtract      = "extract"
	ToolReorder      = "reorder"
	ToolDelete       = "delete"
	ToolDuplicate    = "duplicate"
	ToolWatermark    = "watermark"
	ToolDedupe       = "dedupe"
	ToolReverse      = "reverse"
	ToolPageNumbers  = "page-numbers"
	ToolHeaderFooter = "header-footer"
	ToolMetadata     = "metadata"
	ToolBlank        = "blank"
	ToolCompress     = "compress"
	ToolCrop         = "crop"
	ToolBatch        = "batch"
)

// Tools lists every tool Run understands.
var Tools = []string{
	ToolMerge, ToolSplit, ToolRotate, ToolExtract, ToolReorder, ToolDelete,
	ToolDuplicate, ToolWatermark, ToolDedupe, ToolReverse, ToolPageNumbers,
	ToolHeaderFooter, ToolMetadata, ToolBlank, ToolCompress, ToolCrop, ToolBatch,
}

var ErrUnknownTool = errors.New("unknown tool")

// Params carries the user input for every tool. Page lists are kept as
// typed text and resolved against the document's page count.
type Params struct {
	Pages        string
	Order        string
	Positions    string
	Degrees      int
	Times        int
	Margin       float64
	Watermark    WatermarkOptions
	PageNumbers  PageNumberOptions
	HeaderFooter HeaderFooterOptions
	Metadata     models.DocumentMetadata
}

// Output is one file produced by a tool. Err is only set for batch
// documents that failed on their own.
type Output struct {
	Name string
	Data []byte
	Err  error
}

// MultiInput reports whether tool takes several documents.
func MultiInput(tool string) bool {
	return tool == ToolMerge || tool == ToolBatch
}

// Run applies tool to docs and names the results after the inputs.
func (p *Processor) Run(tool string, docs []NamedDocument, params Params) ([]Output, error) {
	if !slices.Contains(Tools, tool) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	if len(docs) == 0 {
		return nil, ErrNoInput
	}

	switch tool {
	case ToolMerge:
		data := make([][]byte, len(docs))
		for i, d := range docs {
			data[i] = d.Data
		}
		out, err := p.Merge(data)
		if err != nil {
			return nil, err
		}
		return []Output{{Name: "merged.pdf", Data: out}}, nil

	case ToolBatch:
		opts := BatchOptions{Rotation: params.Degrees, Watermark: params.Watermark}
		if !opts.HasOperations() {
			return nil, fmt.Errorf("%w: batch needs a rotation or a watermark", ErrInvalidParameter)
		}
		results := p.Batch(docs, opts)
		outputs := make([]Output, len(results))
		used := make(map[string]bool, len(results))
		for i, r := range results {
			name := uniqueName("processed_"+baseName(r.Name)+".pdf", used)
			outputs[i] = Output{Name: name, Data: r.Data, Err: r.Err}
		}
		return outputs, nil
	}

	if len(docs) > 1 {
		return nil, fmt.Errorf("%w: %s takes a single document", ErrInvalidParameter, tool)
	}
	doc := docs[0]
	base := baseName(doc.Name)
	doc.Name = base + ".pdf"

	if tool == ToolSplit {
		pages, err := p.Split(doc.Data)
		if err != nil {
			return nil, err
		}
		outputs := make([]Output, len(pages))
		for i, page := range pages {
			outputs[i] = Output{Name: fmt.Sprintf("%s_page_%d.pdf", base, i+1), Data: page}
		}
		return outputs, nil
	}

	out, name, err := p.runSingle(tool, doc, base, params)
	if err != nil {
		return nil, err
	}
	return []Output{{Name: name, Data: out}}, nil
}

func (p *Processor) runSingle(tool string, doc NamedDocument, base string, params Params) ([]byte, string, error) {
	var (
		out  []byte
		name string
		err  error
	)

	switch tool {
	case ToolRotate:
		out, err = p.Rotate(doc.Data, params.Degrees)
		name = base + "_rotated.pdf"
	case ToolExtract, ToolDelete, ToolDuplicate, ToolReorder, ToolBlank:
		count, cerr := p.PageCount(doc.Data)
		if cerr != nil {
			return nil, "", cerr
		}
		switch tool {
		case ToolExtract:
			out, err = p.Extract(doc.Data, pagerange.Parse(params.Pages, count))
			name = base + "_extracted.pdf"
		case ToolDelete:
			out, err = p.Delete(doc.Data, pagerange.Parse(params.Pages, count))
			name = base + "_deleted.pdf"
		case ToolDuplicate:
			out, err = p.Duplicate(doc.Data, pagerange.Parse(params.Pages, count), params.Times)
			name = base + "_duplicated.pdf"
		case ToolReorder:
			out, err = p.Reorder(doc.Data, pagerange.ParseOrder(params.Order, count))
			name = "reordered_" + doc.Name
		case ToolBlank:
			out, err = p.InsertBlank(doc.Data, pagerange.ParsePositions(params.Positions, count))
			name = base + "_with_blanks.pdf"
		}
	case ToolWatermark:
		out, err = p.Watermark(doc.Data, params.Watermark)
		name = base + "_watermarked.pdf"
	case ToolDedupe:
		out, err = p.RemoveDuplicates(doc.Data)
		name = base + "_no_duplicates.pdf"
	case ToolReverse:
		out, err = p.Reverse(doc.Data)
		name = base + "_reversed.pdf"
	case ToolPageNumbers:
		out, err = p.PageNumbers(doc.Data, params.PageNumbers)
		name = base + "_numbered.pdf"
	case ToolHeaderFooter:
		out, err = p.HeaderFooter(doc.Data, params.HeaderFooter)
		name = "document_" + doc.Name
	case ToolMetadata:
		out, err = p.SetMetadata(doc.Data, params.Metadata)
		name = base + "_metadata.pdf"
	case ToolCompress:
		out, err = p.Compress(doc.Data)
		name = "compressed_" + doc.Name
	case ToolCrop:
		out, err = p.Crop(doc.Data, params.Margin)
		name = "cropped_" + doc.Name
	}
	if err != nil {
		return nil, "", err
	}
	return out, name, nil
}

// uniqueName returns name, or name with a _2, _3, ... suffix when an
// earlier output already took it.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
	}
	used[candidate] = true
	return candidate
}

func baseName(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
