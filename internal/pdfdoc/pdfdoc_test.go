package pdfdoc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode failed: %v", err)
	}
	return buf.Bytes()
}

// testDoc builds a PDF whose pages are 40x20, 30x30 and 20x40 points.
func testDoc(t *testing.T, p *Processor) []byte {
	t.Helper()
	doc, err := p.AssembleImages([][]byte{
		testJPEG(t, 40, 20),
		testJPEG(t, 30, 30),
		testJPEG(t, 20, 40),
	})
	if err != nil {
		t.Fatalf("AssembleImages failed: %v", err)
	}
	return doc
}

func pageDims(t *testing.T, doc []byte) []types.Dim {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, doc, 0600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	dims, err := api.PageDimsFile(path)
	if err != nil {
		t.Fatalf("PageDimsFile failed: %v", err)
	}
	return dims
}

// pageDict returns the dictionary of the given 1-based page.
func pageDict(t *testing.T, doc []byte, page int) types.Dict {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, doc, 0600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("ReadContextFile failed: %v", err)
	}
	dict, _, _, err := ctx.PageDict(page, false)
	if err != nil {
		t.Fatalf("PageDict(%d) failed: %v", page, err)
	}
	return dict
}

func pageRotation(t *testing.T, doc []byte, page int) int {
	t.Helper()
	if rot := pageDict(t, doc, page).IntEntry("Rotate"); rot != nil {
		return *rot
	}
	return 0
}

func assertSameDims(t *testing.T, got, want []types.Dim) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d pages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Width != want[i].Width || got[i].Height != want[i].Height {
			t.Errorf("page %d = %vx%v, want %vx%v", i+1, got[i].Width, got[i].Height, want[i].Width, want[i].Height)
		}
	}
}

func assertPageCount(t *testing.T, p *Processor, doc []byte, want int) {
	t.Helper()
	got, err := p.PageCount(doc)
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if got != want {
		t.Errorf("page count = %d, want %d", got, want)
	}
}

func TestAssembleImagesUsesImageSize(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	dims := pageDims(t, doc)
	if len(dims) != 3 {
		t.Fatalf("got %d pages, want 3", len(dims))
	}
	if dims[0].Width != 40 || dims[0].Height != 20 {
		t.Errorf("first page = %vx%v, want 40x20", dims[0].Width, dims[0].Height)
	}
	if dims[2].Width != 20 || dims[2].Height != 40 {
		t.Errorf("last page = %vx%v, want 20x40", dims[2].Width, dims[2].Height)
	}
}

func TestAssembleImagesRequiresPages(t *testing.T) {
	p := NewProcessor(t.TempDir())
	if _, err := p.AssembleImages(nil); !errors.Is(err, ErrNoPages) {
		t.Errorf("expected ErrNoPages, got %v", err)
	}
}

func TestPageSelectionTools(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	tests := []struct {
		name  string
		run   func() ([]byte, error)
		pages int
	}{
		{name: "extract", run: func() ([]byte, error) { return p.Extract(doc, []int{3, 1, 9}) }, pages: 2},
		{name: "reorder", run: func() ([]byte, error) { return p.Reorder(doc, []int{2, 0}) }, pages: 2},
		{name: "reverse", run: func() ([]byte, error) { return p.Reverse(doc) }, pages: 3},
		{name: "duplicate", run: func() ([]byte, error) { return p.Duplicate(doc, []int{2}, 2) }, pages: 5},
		{name: "delete", run: func() ([]byte, error) { return p.Delete(doc, []int{2}) }, pages: 2},
		{name: "delete nothing", run: func() ([]byte, error) { return p.Delete(doc, []int{7}) }, pages: 3},
		{name: "insert blank", run: func() ([]byte, error) { return p.InsertBlank(doc, []int{0, 2}) }, pages: 5},
		{name: "rotate", run: func() ([]byte, error) { return p.Rotate(doc, 90) }, pages: 3},
		{name: "compress", run: func() ([]byte, error) { return p.Compress(doc) }, pages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.run()
			if err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}
			assertPageCount(t, p, out, tt.pages)
		})
	}
}

func TestReverseOrder(t *testing.T) {
	p := NewProcessor(t.TempDir())
	out, err := p.Reverse(testDoc(t, p))
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	dims := pageDims(t, out)
	if dims[0].Width != 20 || dims[2].Width != 40 {
		t.Errorf("pages not reversed: %v", dims)
	}
}

func TestRemoveDuplicatesBySize(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc, err := p.AssembleImages([][]byte{
		testJPEG(t, 30, 30),
		testJPEG(t, 40, 20),
		testJPEG(t, 30, 30),
	})
	if err != nil {
		t.Fatalf("AssembleImages failed: %v", err)
	}

	out, err := p.RemoveDuplicates(doc)
	if err != nil {
		t.Fatalf("RemoveDuplicates failed: %v", err)
	}
	assertPageCount(t, p, out, 2)
}

func TestSplitAndMerge(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	parts, err := p.Split(doc)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(parts))
	}
	for _, part := range parts {
		assertPageCount(t, p, part, 1)
	}
	if dims := pageDims(t, parts[2]); dims[0].Width != 20 {
		t.Errorf("split parts out of order, last part is %vpt wide", dims[0].Width)
	}

	merged, err := p.Merge([][]byte{doc, parts[0]})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	assertPageCount(t, p, merged, 4)
}

func TestParameterErrors(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	if _, err := p.Rotate(doc, 45); !errors.Is(err, ErrInvalidRotation) {
		t.Errorf("Rotate(45) error = %v, want ErrInvalidRotation", err)
	}
	if _, err := p.Extract(doc, []int{8}); !errors.Is(err, ErrNoPages) {
		t.Errorf("Extract out of range error = %v, want ErrNoPages", err)
	}
	if _, err := p.Delete(doc, []int{1, 2, 3}); !errors.Is(err, ErrNoPages) {
		t.Errorf("Delete all error = %v, want ErrNoPages", err)
	}
	if _, err := p.HeaderFooter(doc, HeaderFooterOptions{}); !errors.Is(err, ErrNothingToStamp) {
		t.Errorf("HeaderFooter error = %v, want ErrNothingToStamp", err)
	}
	if _, err := p.Watermark(doc, WatermarkOptions{Text: "  "}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Watermark error = %v, want ErrInvalidParameter", err)
	}
	if _, err := p.Merge(nil); !errors.Is(err, ErrNoInput) {
		t.Errorf("Merge error = %v, want ErrNoInput", err)
	}
}

func TestRotateZeroReturnsInput(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	out, err := p.Rotate(doc, 360)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if !bytes.Equal(out, doc) {
		t.Error("full-turn rotation changed the document")
	}
}

func TestMalformedInputIsLibraryError(t *testing.T) {
	p := NewProcessor(t.TempDir())
	garbage := []byte("this is not a pdf")

	_, err := p.Reverse(garbage)
	var libErr *LibraryError
	if !errors.As(err, &libErr) {
		t.Fatalf("expected LibraryError, got %v", err)
	}
	if libErr.Op != "reverse" {
		t.Errorf("LibraryError.Op = %q, want reverse", libErr.Op)
	}

	if err := p.Validate(garbage); !errors.As(err, &libErr) {
		t.Errorf("Validate error = %v, want LibraryError", err)
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	results := p.Batch([]NamedDocument{
		{Name: "good.pdf", Data: doc},
		{Name: "bad.pdf", Data: []byte("nope")},
	}, BatchOptions{Rotation: 180})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("good.pdf failed: %v", results[0].Err)
	}
	assertPageCount(t, p, results[0].Data, 3)

	var libErr *LibraryError
	if !errors.As(results[1].Err, &libErr) {
		t.Errorf("bad.pdf error = %v, want LibraryError", results[1].Err)
	}
	if results[1].Data != nil {
		t.Error("failed batch document returned partial output")
	}
}

func TestInsertBlankUsesFirstPageSize(t *testing.T) {
	p := NewProcessor(t.TempDir())
	out, err := p.InsertBlank(testDoc(t, p), []int{0, 1, 3})
	if err != nil {
		t.Fatalf("InsertBlank failed: %v", err)
	}
	assertSameDims(t, pageDims(t, out), []types.Dim{
		{Width: 40, Height: 20},
		{Width: 40, Height: 20},
		{Width: 40, Height: 20},
		{Width: 30, Height: 30},
		{Width: 20, Height: 40},
		{Width: 40, Height: 20},
	})
}

func TestInsertBlankNoValidPosition(t *testing.T) {
	p := NewProcessor(t.TempDir())
	if _, err := p.InsertBlank(testDoc(t, p), []int{-1, 9}); !errors.Is(err, ErrNoPages) {
		t.Errorf("expected ErrNoPages, got %v", err)
	}
}

func TestRotateAddsToExistingRotation(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	once, err := p.Rotate(doc, 90)
	if err != nil {
		t.Fatalf("Rotate(90) failed: %v", err)
	}
	for page := 1; page <= 3; page++ {
		if got := pageRotation(t, once, page); got != 90 {
			t.Errorf("page %d rotation = %d, want 90", page, got)
		}
	}

	twice, err := p.Rotate(once, 270)
	if err != nil {
		t.Fatalf("Rotate(270) failed: %v", err)
	}
	for page := 1; page <= 3; page++ {
		if got := pageRotation(t, twice, page); got != 0 {
			t.Errorf("page %d rotation = %d, want 0", page, got)
		}
	}
}

func TestCropSetsCropBox(t *testing.T) {
	p := NewProcessor(t.TempDir())
	out, err := p.Crop(testDoc(t, p), 5)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	box := pageDict(t, out, 1).ArrayEntry("CropBox")
	if len(box) != 4 {
		t.Fatalf("CropBox = %v, want 4 coordinates", box)
	}
	coords := make([]float64, 4)
	for i, o := range box {
		switch v := o.(type) {
		case types.Float:
			coords[i] = float64(v)
		case types.Integer:
			coords[i] = float64(v)
		default:
			t.Fatalf("CropBox[%d] has type %T", i, o)
		}
	}
	if w, h := coords[2]-coords[0], coords[3]-coords[1]; w != 30 || h != 10 {
		t.Errorf("crop box = %vx%v, want 30x10 on a 40x20 page", w, h)
	}

	if _, err := p.Crop(out, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Crop(0) error = %v, want ErrInvalidParameter", err)
	}
}

func TestStampToolsKeepPages(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)
	want := pageDims(t, doc)

	headerOnly, err := p.HeaderFooter(doc, HeaderFooterOptions{Header: "Chapter 1"})
	if err != nil {
		t.Fatalf("HeaderFooter(header) failed: %v", err)
	}

	tests := []struct {
		name string
		run  func() ([]byte, error)
	}{
		{name: "watermark", run: func() ([]byte, error) {
			return p.Watermark(doc, WatermarkOptions{Text: "DRAFT", Opacity: 30})
		}},
		{name: "page numbers", run: func() ([]byte, error) {
			return p.PageNumbers(doc, PageNumberOptions{Position: TopRight, Start: 5})
		}},
		{name: "header", run: func() ([]byte, error) { return headerOnly, nil }},
		{name: "footer", run: func() ([]byte, error) {
			return p.HeaderFooter(doc, HeaderFooterOptions{Footer: "Confidential"})
		}},
		{name: "header and footer", run: func() ([]byte, error) {
			return p.HeaderFooter(doc, HeaderFooterOptions{Header: "Chapter 1", Footer: "Confidential"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.run()
			if err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}
			if bytes.Equal(out, doc) {
				t.Error("document was not stamped")
			}
			assertSameDims(t, pageDims(t, out), want)
		})
	}

	both, err := p.HeaderFooter(doc, HeaderFooterOptions{Header: "Chapter 1", Footer: "Confidential"})
	if err != nil {
		t.Fatalf("HeaderFooter failed: %v", err)
	}
	if bytes.Equal(both, headerOnly) {
		t.Error("footer pass did not change the header-only output")
	}
}

func TestSetMetadataRoundTrip(t *testing.T) {
	p := NewProcessor(t.TempDir())
	doc := testDoc(t, p)

	title := "Field Notes"
	author := "A. Scanner"
	out, err := p.SetMetadata(doc, models.DocumentMetadata{
		Title:    &title,
		Author:   &author,
		Keywords: []string{"survey", "1998"},
	})
	if err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}

	info, err := p.Info(out)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Title != title || info.Author != author {
		t.Errorf("info = %q by %q, want %q by %q", info.Title, info.Author, title, author)
	}
	if info.Subject != "" {
		t.Errorf("subject = %q, want it left unset", info.Subject)
	}
	if info.PageCount != 3 {
		t.Errorf("page count = %d, want 3", info.PageCount)
	}
	joined := strings.Join(info.Keywords, " ")
	if !strings.Contains(joined, "survey") || !strings.Contains(joined, "1998") {
		t.Errorf("keywords = %v, want survey and 1998", info.Keywords)
	}
}
