package models

import "time"

// PageContent represents the structured content extracted from a single page
type PageContent struct {
	URL          string      `json:"url,omitempty"`
	StatusCode   int         `json:"status_code,omitempty"`
	Text         string      `json:"text"`
	Metadata     Metadata    `json:"metaData"`
	Titles       []Title     `json:"titles"`
	Paragraphs   []Paragraph `json:"paragraphs"`
	Lists        []List      `json:"lists"`
	Images       []Image     `json:"images"`
	Links        []Link      `json:"links"`
	Spans        []string    `json:"spans"`
	Tables       []Table     `json:"tables"`
	HTML         string      `json:"html,omitempty"`
	FetchedAt    time.Time   `json:"fetched_at,omitempty"`
	ResponseTime int64       `json:"response_time_ms,omitempty"`
}

// Metadata holds the document-level <title> and <meta> values
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// Title is a heading element (h1-h6)
type Title struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// Paragraph is a <p> element
type Paragraph struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// List is a <ul> element and its non-empty items
type List struct {
	Tag   string   `json:"tag"`
	Items []string `json:"items"`
}

// Image is an <img> element with a non-empty src
type Image struct {
	Src   string `json:"src"`
	Alt   string `json:"alt"`
	Title string `json:"title"`
}

// Link is an <a> element with a non-empty href.
// Title, Rel and Dataset are optional and empty when the attribute is absent.
type Link struct {
	Href    string            `json:"href"`
	Text    string            `json:"text"`
	Title   string            `json:"title,omitempty"`
	Rel     string            `json:"rel,omitempty"`
	Dataset map[string]string `json:"dataset,omitempty"`
}

// Table is a sequence of rows, each a sequence of trimmed cell strings
type Table [][]string

// CrawlResult is the ordered sequence of pages visited by one crawl
type CrawlResult []*PageContent

// RequestOptions contains options for a single page request
type RequestOptions struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	// NoCache bypasses the response cache for this request
	NoCache bool
}
