// Package pagerange parses the page lists typed into the PDF tools,
// such as "1, 3-5, 8".
package pagerange

import (
	"sort"
	"strconv"
	"strings"
)

// Parse returns the sorted, de-duplicated 1-based pages named by input.
// Items are separated by commas and are either a page number or an
// inclusive "start-end" range. Items that do not parse, ranges with
// start > end, and pages outside [1, pageCount] are ignored.
func Parse(input string, pageCount int) []int {
	seen := make(map[int]bool)
	var pages []int

	add := func(n int) {
		if n >= 1 && n <= pageCount && !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}

	for _, part := range strings.Split(input, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if startStr, endStr, isRange := strings.Cut(item, "-"); isRange {
			start, err1 := strconv.Atoi(strings.TrimSpace(startStr))
			end, err2 := strconv.Atoi(strings.TrimSpace(endStr))
			if err1 != nil || err2 != nil || start > end {
				continue
			}
			for n := max(start, 1); n <= min(end, pageCount); n++ {
				add(n)
			}
			continue
		}
		if n, err := strconv.Atoi(item); err == nil {
			add(n)
		}
	}

	sort.Ints(pages)
	return pages
}

// ParsePositions returns sorted, unique insertion positions in
// [0, pageCount]. Position 0 is before the first page and position n is
// after page n. Ranges are not accepted here.
func ParsePositions(input string, pageCount int) []int {
	seen := make(map[int]bool)
	var positions []int

	for _, part := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > pageCount || seen[n] {
			continue
		}
		seen[n] = true
		positions = append(positions, n)
	}

	sort.Ints(positions)
	return positions
}

// ParseOrder reads a comma separated list of 1-based page numbers in the
// order given and returns them as 0-based indices. Repeats are kept;
// entries outside [1, pageCount] are dropped.
func ParseOrder(input string, pageCount int) []int {
	var order []int
	for _, part := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > pageCount {
			continue
		}
		order = append(order, n-1)
	}
	return order
}
