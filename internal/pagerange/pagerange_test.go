package pagerange

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		pageCount int
		expected  []int
	}{
		{name: "mixed list", input: "1, 3-5, 8", pageCount: 10, expected: []int{1, 3, 4, 5, 8}},
		{name: "unsorted with duplicates", input: "8,2,2,3-4,3", pageCount: 10, expected: []int{2, 3, 4, 8}},
		{name: "out of range dropped", input: "0, 4, 11, 12-15", pageCount: 10, expected: []int{4}},
		{name: "range clipped to document", input: "9-20", pageCount: 10, expected: []int{9, 10}},
		{name: "reversed range ignored", input: "5-3, 1", pageCount: 10, expected: []int{1}},
		{name: "garbage ignored", input: "a, 2, x-3, , 4-", pageCount: 10, expected: []int{2}},
		{name: "spaces inside range", input: " 2 - 3 ", pageCount: 10, expected: []int{2, 3}},
		{name: "empty input", input: "", pageCount: 10, expected: nil},
		{name: "empty document", input: "1-3", pageCount: 0, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.input, tt.pageCount)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Parse(%q, %d) = %v, want %v", tt.input, tt.pageCount, result, tt.expected)
			}
		})
	}
}

func TestParsePositions(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		pageCount int
		expected  []int
	}{
		{name: "start and after pages", input: "0, 2, 5", pageCount: 5, expected: []int{0, 2, 5}},
		{name: "sorted and unique", input: "3,1,3", pageCount: 5, expected: []int{1, 3}},
		{name: "beyond end dropped", input: "6, -1, 2", pageCount: 5, expected: []int{2}},
		{name: "ranges not accepted", input: "1-2", pageCount: 5, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParsePositions(tt.input, tt.pageCount)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ParsePositions(%q, %d) = %v, want %v", tt.input, tt.pageCount, result, tt.expected)
			}
		})
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		pageCount int
		expected  []int
	}{
		{name: "custom order", input: "3,1,2", pageCount: 3, expected: []int{2, 0, 1}},
		{name: "repeats kept", input: "1,1", pageCount: 3, expected: []int{0, 0}},
		{name: "invalid dropped", input: "4, 0, x, 2", pageCount: 3, expected: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseOrder(tt.input, tt.pageCount)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ParseOrder(%q, %d) = %v, want %v", tt.input, tt.pageCount, result, tt.expected)
			}
		})
	}
}
