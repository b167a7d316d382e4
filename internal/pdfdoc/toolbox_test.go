package pdfdoc

import (
	"errors"
	"testing"
)

func TestRunNamesOutputs(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)
	in := []NamedDocument{{Name: "scan.pdf", Data: doc}}

	tests := []struct {
		tool   string
		params Params
		name   string
		pages  int
	}{
		{tool: ToolRotate, params: Params{Degrees: 90}, name: "scan_rotated.pdf", pages: 3},
		{tool: ToolExtract, params: Params{Pages: "1, 3-9"}, name: "scan_extracted.pdf", pages: 2},
		{tool: ToolDelete, params: Params{Pages: "2"}, name: "scan_deleted.pdf", pages: 2},
		{tool: ToolDuplicate, params: Params{Pages: "1", Times: 2}, name: "scan_duplicated.pdf", pages: 5},
		{tool: ToolReorder, params: Params{Order: "3,1"}, name: "reordered_scan.pdf", pages: 2},
		{tool: ToolBlank, params: Params{Positions: "0,3"}, name: "scan_with_blanks.pdf", pages: 5},
		{tool: ToolReverse, name: "scan_reversed.pdf", pages: 3},
		{tool: ToolDedupe, name: "scan_no_duplicates.pdf", pages: 3},
		{tool: ToolCompress, name: "compressed_scan.pdf", pages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			outs, err := p.Run(tt.tool, in, tt.params)
			if err != nil {
				t.Fatalf("Run(%s) failed: %v", tt.tool, err)
			}
			if len(outs) != 1 {
				t.Fatalf("got %d outputs, want 1", len(outs))
			}
			if outs[0].Name != tt.name {
				t.Errorf("Name = %q, want %q", outs[0].Name, tt.name)
			}
			assertPageCount(t, p, outs[0].Data, tt.pages)
		})
	}
}

func TestRunSplitAndMerge(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	pages, err := p.Run(ToolSplit, []NamedDocument{{Name: "book.pdf", Data: doc}}, Params{})
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(pages) != 3 || pages[2].Name != "book_page_3.pdf" {
		t.Fatalf("unexpected split outputs: %d, %q", len(pages), pages[len(pages)-1].Name)
	}

	docs := make([]NamedDocument, len(pages))
	for i, pg := range pages {
		docs[i] = NamedDocument{Name: pg.Name, Data: pg.Data}
	}
	merged, err := p.Run(ToolMerge, docs, Params{})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged[0].Name != "merged.pdf" {
		t.Errorf("Name = %q, want merged.pdf", merged[0].Name)
	}
	assertPageCount(t, p, merged[0].Data, 3)
}

func TestRunRejectsBadRequests(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)
	one := []NamedDocument{{Name: "a.pdf", Data: doc}}
	two := append(one, NamedDocument{Name: "b.pdf", Data: doc})

	tests := []struct {
		name   string
		tool   string
		docs   []NamedDocument
		params Params
		want   error
	}{
		{name: "unknown tool", tool: "grayscale", docs: one, want: ErrUnknownTool},
		{name: "no input", tool: ToolReverse, want: ErrNoInput},
		{name: "too many inputs", tool: ToolReverse, docs: two, want: ErrInvalidParameter},
		{name: "empty batch", tool: ToolBatch, docs: two, want: ErrInvalidParameter},
		{name: "extract nothing", tool: ToolExtract, docs: one, params: Params{Pages: "9"}, want: ErrNoPages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Run(tt.tool, tt.docs, tt.params)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunBatchKeepsFailures(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	outs, err := p.Run(ToolBatch, []NamedDocument{
		{Name: "a.pdf", Data: doc},
		{Name: "b.pdf", Data: []byte("broken")},
	}, Params{Watermark: WatermarkOptions{Text: "DRAFT", Opacity: 30}})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if outs[0].Name != "processed_a.pdf" || outs[0].Err != nil {
		t.Errorf("outs[0] = %q, %v", outs[0].Name, outs[0].Err)
	}
	if outs[1].Err == nil {
		t.Error("expected error for broken document")
	}
}

func TestRunBatchRepeatedNames(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	outs, err := p.Run(ToolBatch, []NamedDocument{
		{Name: "scan.pdf", Data: doc},
		{Name: "scan.pdf", Data: doc},
		{Name: "scan.pdf", Data: []byte("broken")},
		{Name: "other.pdf", Data: doc},
	}, Params{Degrees: 90})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	want := []string{"processed_scan.pdf", "processed_scan_2.pdf", "processed_scan_3.pdf", "processed_other.pdf"}
	if len(outs) != len(want) {
		t.Fatalf("got %d outputs, want %d", len(outs), len(want))
	}
	for i, name := range want {
		if outs[i].Name != name {
			t.Errorf("outs[%d].Name = %q, want %q", i, outs[i].Name, name)
		}
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{}
	tests := []struct {
		in   string
		want string
	}{
		{in: "a.pdf", want: "a.pdf"},
		{in: "a.pdf", want: "a_2.pdf"},
		{in: "a_2.pdf", want: "a_2_2.pdf"},
		{in: "a.pdf", want: "a_3.pdf"},
		{in: "notes", want: "notes"},
		{in: "notes", want: "notes_2"},
	}
	for _, tt := range tests {
		if got := uniqueName(tt.in, used); got != tt.want {
			t.Errorf("uniqueName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
