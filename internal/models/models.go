package models

import "time"

// ScanSession is an ordered set of scanned pages destined for one PDF
type ScanSession struct {
	ID        string         `json:"id"`
	Pages     []*ScannedPage `json:"pages"`
	Enhance   bool           `json:"enhance"`
	Settings  Enhancement    `json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
}

// ScannedPage is one enhanced image plus its preview thumbnail
type ScannedPage struct {
	ID           string    `json:"id"`
	SourceName   string    `json:"source_name"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	ImageURL     string    `json:"image_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Image        []byte    `json:"-"`
	Thumbnail    []byte    `json:"-"`
}

// Enhancement mirrors the scanner settings in request/response bodies
type Enhancement struct {
	Brightness int     `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Sharpen    bool    `json:"sharpen"`
}

// PageError reports a single input that could not become a page
type PageError struct {
	Index  int    `json:"index"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

// DocumentMetadata is the editable part of a PDF's document information.
// A nil field is left as it is in the document.
type DocumentMetadata struct {
	Title    *string  `json:"title,omitempty"`
	Author   *string  `json:"author,omitempty"`
	Subject  *string  `json:"subject,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// IsEmpty reports whether no field is set
func (m DocumentMetadata) IsEmpty() bool {
	return m.Title == nil && m.Author == nil && m.Subject == nil && m.Keywords == nil
}

// DocumentInfo is what the metadata viewer shows for a PDF
type DocumentInfo struct {
	Title            string   `json:"title" yaml:"title"`
	Author           string   `json:"author" yaml:"author"`
	Subject          string   `json:"subject" yaml:"subject"`
	Keywords         []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Creator          string   `json:"creator" yaml:"creator"`
	Producer         string   `json:"producer" yaml:"producer"`
	CreationDate     string   `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	ModificationDate string   `json:"modification_date,omitempty" yaml:"modification_date,omitempty"`
	PageCount        int      `json:"page_count" yaml:"page_count"`
}
