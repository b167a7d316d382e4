package pdfdoc

import (
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// selection renders 1-based page numbers as a pdfcpu page selection,
// keeping order and repeats.
func selection(pages []int) []string {
	sel := make([]string, 0, len(pages))
	for _, n := range pages {
		sel = append(sel, strconv.Itoa(n))
	}
	return sel
}

// validPages keeps the 1-based pages inside [1, pageCount], sorted and unique.
func validPages(pages []int, pageCount int) []int {
	seen := make(map[int]bool, len(pages))
	var out []int
	for _, n := range pages {
		if n >= 1 && n <= pageCount && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// reorderPages converts a 0-based order into 1-based pages, dropping
// indices outside the document. Repeats are kept.
func reorderPages(order []int, pageCount int) []int {
	var out []int
	for _, i := range order {
		if i >= 0 && i < pageCount {
			out = append(out, i+1)
		}
	}
	return out
}

// duplicatePages lists every page in order, following each page in dup by
// times extra copies of itself.
func duplicatePages(pageCount int, dup []int, times int) []int {
	want := make(map[int]bool, len(dup))
	for _, n := range validPages(dup, pageCount) {
		want[n] = true
	}
	out := make([]int, 0, pageCount)
	for n := 1; n <= pageCount; n++ {
		out = append(out, n)
		if want[n] {
			for j := 0; j < times; j++ {
				out = append(out, n)
			}
		}
	}
	return out
}

// reversedPages lists pages from last to first.
func reversedPages(pageCount int) []int {
	out := make([]int, 0, pageCount)
	for n := pageCount; n >= 1; n-- {
		out = append(out, n)
	}
	return out
}

// uniqueSizePages keeps the first page of each width/height pair. Page
// content is not compared.
func uniqueSizePages(dims []types.Dim) []int {
	type key struct{ w, h float64 }
	seen := make(map[key]bool, len(dims))
	var out []int
	for i, d := range dims {
		k := key{d.Width, d.Height}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, i+1)
	}
	return out
}

// normalizeRotation maps any multiple of 90 into {0, 90, 180, 270}.
func normalizeRotation(degrees int) (int, error) {
	if degrees%90 != 0 {
		return 0, ErrInvalidRotation
	}
	return ((degrees % 360) + 360) % 360, nil
}

// splitPositions separates insertion points into pages that get a blank
// page after them and whether one goes before the first page.
func splitPositions(positions []int, pageCount int) (after []int, atStart bool) {
	seen := make(map[int]bool, len(positions))
	for _, pos := range positions {
		if pos < 0 || pos > pageCount || seen[pos] {
			continue
		}
		seen[pos] = true
		if pos == 0 {
			atStart = true
			continue
		}
		after = append(after, pos)
	}
	sort.Ints(after)
	return after, atStart
}
