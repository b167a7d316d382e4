package pdfdoc

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// AssembleImages builds a PDF with one page per image, in order. Each page
// has the pixel dimensions of its image, in points.
func (p *Processor) AssembleImages(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoPages
	}
	ws, err := p.workspace("assemble")
	if err != nil {
		return nil, err
	}
	defer ws.close()

	files := make([]string, 0, len(images))
	for i, img := range images {
		path, err := ws.write(fmt.Sprintf("page_%04d%s", i+1, imageExt(img)), img)
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	imp, err := pdfcpu.ParseImportDetails("pos:full", types.POINTS)
	if err != nil {
		return nil, ws.libErr(err)
	}
	if err := api.ImportImagesFile(files, ws.path("output.pdf"), imp, p.config()); err != nil {
		return nil, ws.libErr(err)
	}

	slog.Debug("Assembled PDF from images", "pages", len(images))
	return ws.read("output.pdf")
}

func imageExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// Merge concatenates docs in the given order.
func (p *Processor) Merge(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, ErrNoInput
	}
	ws, err := p.workspace("merge")
	if err != nil {
		return nil, err
	}
	defer ws.close()

	files := make([]string, 0, len(docs))
	for i, doc := range docs {
		if len(doc) == 0 {
			return nil, fmt.Errorf("document %d: %w", i+1, ErrNoInput)
		}
		path, err := ws.write(fmt.Sprintf("input_%04d.pdf", i+1), doc)
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	if err := api.MergeCreateFile(files, ws.path("output.pdf"), false, p.config()); err != nil {
		return nil, ws.libErr(err)
	}
	return ws.read("output.pdf")
}

var splitSuffix = regexp.MustCompile(`_(\d+)\.pdf$`)

// Split returns one single-page document per page, in page order.
func (p *Processor) Split(doc []byte) ([][]byte, error) {
	if len(doc) == 0 {
		return nil, ErrNoInput
	}
	ws, err := p.workspace("split")
	if err != nil {
		return nil, err
	}
	defer ws.close()

	in, err := ws.write("input.pdf", doc)
	if err != nil {
		return nil, err
	}
	outDir := ws.path("pages")
	if err := os.MkdirAll(outDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create split directory: %w", err)
	}
	if err := api.SplitFile(in, outDir, 1, p.config()); err != nil {
		return nil, ws.libErr(err)
	}

	files, err := filepath.Glob(filepath.Join(outDir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list split files: %w", err)
	}
	sort.Slice(files, func(i, j int) bool {
		return splitIndex(files[i]) < splitIndex(files[j])
	})

	pages := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read split page: %w", err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

func splitIndex(name string) int {
	m := splitSuffix.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// Rotate adds degrees (a multiple of 90) to the rotation of every page.
// A rotation of zero returns doc unchanged.
func (p *Processor) Rotate(doc []byte, degrees int) ([]byte, error) {
	rot, err := normalizeRotation(degrees)
	if err != nil {
		return nil, err
	}
	if rot == 0 {
		return bytes.Clone(doc), nil
	}
	return p.transform("rotate", doc, func(in, out string) error {
		return api.RotateFile(in, out, rot, nil, p.config())
	})
}

// collect writes the given 1-based pages, in order, to a new document.
func (p *Processor) collect(op string, doc []byte, pagesFor func(pageCount int) ([]int, error)) ([]byte, error) {
	return p.transform(op, doc, func(in, out string) error {
		count, err := api.PageCountFile(in)
		if err != nil {
			return err
		}
		pages, err := pagesFor(count)
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			return ErrNoPages
		}
		return api.CollectFile(in, out, selection(pages), p.config())
	})
}

// Extract keeps only the listed 1-based pages. Pages outside the document
// are ignored.
func (p *Processor) Extract(doc []byte, pages []int) ([]byte, error) {
	return p.collect("extract", doc, func(count int) ([]int, error) {
		return validPages(pages, count), nil
	})
}

// Reorder builds a document from 0-based page indices in the given order.
// Indices outside the document are dropped.
func (p *Processor) Reorder(doc []byte, order []int) ([]byte, error) {
	return p.collect("reorder", doc, func(count int) ([]int, error) {
		return reorderPages(order, count), nil
	})
}

// Reverse puts the pages in reverse order.
func (p *Processor) Reverse(doc []byte) ([]byte, error) {
	return p.collect("reverse", doc, func(count int) ([]int, error) {
		return reversedPages(count), nil
	})
}

// Duplicate follows each listed 1-based page with times extra copies.
func (p *Processor) Duplicate(doc []byte, pages []int, times int) ([]byte, error) {
	if times < 1 {
		return nil, fmt.Errorf("%w: times must be at least 1", ErrInvalidParameter)
	}
	return p.collect("duplicate", doc, func(count int) ([]int, error) {
		return duplicatePages(count, pages, times), nil
	})
}

// RemoveDuplicates keeps the first page of every distinct page size.
func (p *Processor) RemoveDuplicates(doc []byte) ([]byte, error) {
	return p.transform("dedupe", doc, func(in, out string) error {
		dims, err := api.PageDimsFile(in)
		if err != nil {
			return err
		}
		pages := uniqueSizePages(dims)
		if len(pages) == 0 {
			return ErrNoPages
		}
		slog.Debug("Removing duplicate pages", "pages", len(dims), "kept", len(pages))
		return api.CollectFile(in, out, selection(pages), p.config())
	})
}

// Delete removes the listed 1-based pages. Pages outside the document are
// ignored; removing every page is an error.
func (p *Processor) Delete(doc []byte, pages []int) ([]byte, error) {
	return p.transform("delete", doc, func(in, out string) error {
		count, err := api.PageCountFile(in)
		if err != nil {
			return err
		}
		remove := validPages(pages, count)
		if len(remove) == 0 {
			return copyFile(in, out)
		}
		if len(remove) == count {
			return fmt.Errorf("%w: cannot delete every page", ErrNoPages)
		}
		return api.RemovePagesFile(in, out, selection(remove), p.config())
	})
}

// InsertBlank inserts a blank page at every position: 0 is before the
// first page, n is after page n. Every blank page has the size of the
// first page.
func (p *Processor) InsertBlank(doc []byte, positions []int) ([]byte, error) {
	return p.transform("insert", doc, func(in, out string) error {
		dims, err := api.PageDimsFile(in)
		if err != nil {
			return err
		}
		after, atStart := splitPositions(positions, len(dims))
		if len(dims) == 0 || (len(after) == 0 && !atStart) {
			return ErrNoPages
		}
		pageConf := blankPageConfig(dims[0])

		src := in
		if len(after) > 0 {
			if err := api.InsertPagesFile(src, out, selection(after), false, pageConf, p.config()); err != nil {
				return err
			}
			src = out
		}
		if atStart {
			if err := api.InsertPagesFile(src, out, []string{"1"}, true, pageConf, p.config()); err != nil {
				return err
			}
		}
		return nil
	})
}

func blankPageConfig(dim types.Dim) *pdfcpu.PageConfiguration {
	return &pdfcpu.PageConfiguration{
		PageDim: &types.Dim{Width: dim.Width, Height: dim.Height},
		UserDim: true,
		InpUnit: types.POINTS,
	}
}

// WatermarkOptions is the diagonal text stamp.
type WatermarkOptions struct {
	Text string
	// Opacity in percent, 0-100.
	Opacity int
}

// Watermark draws Text diagonally across the center of every page.
func (p *Processor) Watermark(doc []byte, opts WatermarkOptions) ([]byte, error) {
	if strings.TrimSpace(opts.Text) == "" {
		return nil, fmt.Errorf("%w: watermark text is required", ErrInvalidParameter)
	}
	return p.transform("watermark", doc, func(in, out string) error {
		wm, err := api.TextWatermark(opts.Text, watermarkDesc(opts.Opacity), true, false, types.POINTS)
		if err != nil {
			return err
		}
		return api.AddWatermarksFile(in, out, nil, wm, p.config())
	})
}

// PageNumberOptions places a running page number on every page.
type PageNumberOptions struct {
	Position Position
	Start    int
}

// PageNumbers labels page i (0-based) with Start+i.
func (p *Processor) PageNumbers(doc []byte, opts PageNumberOptions) ([]byte, error) {
	desc, err := pageNumberDesc(opts.Position)
	if err != nil {
		return nil, err
	}
	return p.transform("page-numbers", doc, func(in, out string) error {
		count, err := api.PageCountFile(in)
		if err != nil {
			return err
		}
		stamps := make(map[int]*model.Watermark, count)
		for i := 0; i < count; i++ {
			wm, err := api.TextWatermark(strconv.Itoa(opts.Start+i), desc, true, false, types.POINTS)
			if err != nil {
				return err
			}
			stamps[i+1] = wm
		}
		return api.AddWatermarksMapFile(in, out, stamps, p.config())
	})
}

// HeaderFooterOptions holds the text for the top and bottom of each page.
type HeaderFooterOptions struct {
	Header string
	Footer string
}

// HeaderFooter stamps a centered header and/or footer on every page.
func (p *Processor) HeaderFooter(doc []byte, opts HeaderFooterOptions) ([]byte, error) {
	if opts.Header == "" && opts.Footer == "" {
		return nil, ErrNothingToStamp
	}
	return p.transform("header-footer", doc, func(in, out string) error {
		src := in
		if opts.Header != "" {
			wm, err := api.TextWatermark(opts.Header, headerDesc(), true, false, types.POINTS)
			if err != nil {
				return err
			}
			if err := api.AddWatermarksFile(src, out, nil, wm, p.config()); err != nil {
				return err
			}
			src = out
		}
		if opts.Footer != "" {
			wm, err := api.TextWatermark(opts.Footer, footerDesc(), true, false, types.POINTS)
			if err != nil {
				return err
			}
			if err := api.AddWatermarksFile(src, out, nil, wm, p.config()); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetMetadata writes only the fields present in meta.
func (p *Processor) SetMetadata(doc []byte, meta models.DocumentMetadata) ([]byte, error) {
	props := metadataProperties(meta)
	if len(props) == 0 {
		return bytes.Clone(doc), nil
	}
	return p.transform("metadata", doc, func(in, out string) error {
		return api.AddPropertiesFile(in, out, props, p.config())
	})
}

func metadataProperties(meta models.DocumentMetadata) map[string]string {
	props := make(map[string]string)
	if meta.Title != nil {
		props["Title"] = *meta.Title
	}
	if meta.Author != nil {
		props["Author"] = *meta.Author
	}
	if meta.Subject != nil {
		props["Subject"] = *meta.Subject
	}
	if meta.Keywords != nil {
		props["Keywords"] = strings.Join(meta.Keywords, " ")
	}
	return props
}

// Info reads the document information dictionary and page count.
func (p *Processor) Info(doc []byte) (*models.DocumentInfo, error) {
	if len(doc) == 0 {
		return nil, ErrNoInput
	}
	info, err := api.PDFInfo(bytes.NewReader(doc), "input.pdf", nil, p.config())
	if err != nil {
		return nil, &LibraryError{Op: "info", Err: err}
	}
	return &models.DocumentInfo{
		Title:            info.Title,
		Author:           info.Author,
		Subject:          info.Subject,
		Keywords:         info.Keywords,
		Creator:          info.Creator,
		Producer:         info.Producer,
		CreationDate:     info.CreationDate,
		ModificationDate: info.ModificationDate,
		PageCount:        info.PageCount,
	}, nil
}

// Compress rewrites doc with pdfcpu's optimizer.
func (p *Processor) Compress(doc []byte) ([]byte, error) {
	return p.transform("compress", doc, func(in, out string) error {
		return api.OptimizeFile(in, out, p.config())
	})
}

// Crop trims margin points from every side of every page.
func (p *Processor) Crop(doc []byte, margin float64) ([]byte, error) {
	if margin <= 0 {
		return nil, fmt.Errorf("%w: crop margin must be positive", ErrInvalidParameter)
	}
	return p.transform("crop", doc, func(in, out string) error {
		box, err := model.ParseBox(strconv.FormatFloat(margin, 'f', 2, 64), types.POINTS)
		if err != nil {
			return err
		}
		return api.CropFile(in, out, nil, box, p.config())
	})
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}
