package rag

import (
	"sort"
	"strings"
)

// Resource is the upstream resource object. Its shape varies by
// document-processing pipeline version, so every nested block is optional.
type Resource struct {
	UUID      string          `json:"uuid"`
	Title     string          `json:"title"`
	Data      *ResourceData   `json:"data"`
	Extracted *ExtractedBlock `json:"extracted"`
	Basic     *BasicBlock     `json:"basic"`
}

// ResourceData holds per-field payloads keyed by field id. File uploads land
// under the "file" key.
type ResourceData struct {
	Files map[string]*FileField `json:"files"`
	Texts map[string]*TextField `json:"texts"`
}

type FileField struct {
	Extracted *FileExtracted `json:"extracted"`
}

type FileExtracted struct {
	Text *ExtractedText `json:"text"`
}

type ExtractedText struct {
	Text string `json:"text"`
}

type TextField struct {
	Body string `json:"body"`
}

type ExtractedBlock struct {
	Text string         `json:"text"`
	File *ExtractedFile `json:"file"`
}

type ExtractedFile struct {
	Text string `json:"text"`
}

type BasicBlock struct {
	Text string `json:"text"`
}

// textProbes lists the known locations of extracted text in priority order.
// Richer pipeline-specific fields come before generic ones; the order is a
// design decision, not accidental.
var textProbes = []struct {
	name  string
	probe func(*Resource) string
}{
	{"data.files.extracted.text.text", fileExtractedText},
	{"data.texts", joinedTextBodies},
	{"extracted.text", func(r *Resource) string {
		if r.Extracted == nil {
			return ""
		}
		return r.Extracted.Text
	}},
	{"extracted.file.text", func(r *Resource) string {
		if r.Extracted == nil || r.Extracted.File == nil {
			return ""
		}
		return r.Extracted.File.Text
	}},
	{"basic.text", func(r *Resource) string {
		if r.Basic == nil {
			return ""
		}
		return r.Basic.Text
	}},
}

// LocateText searches the known structural locations for extracted document
// text and returns the first non-empty hit. A resource matching no probe
// yields the empty string; absence is an expected outcome, never an error.
func LocateText(r *Resource) string {
	if r == nil {
		return ""
	}
	for _, p := range textProbes {
		if text := p.probe(r); text != "" {
			return text
		}
	}
	return ""
}

func fileExtractedText(r *Resource) string {
	if r.Data == nil || len(r.Data.Files) == 0 {
		return ""
	}
	// The upload field id is "file"; check it first, then the rest in a
	// deterministic order.
	if text := fileFieldText(r.Data.Files["file"]); text != "" {
		return text
	}
	keys := make([]string, 0, len(r.Data.Files))
	for k := range r.Data.Files {
		if k == "file" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if text := fileFieldText(r.Data.Files[k]); text != "" {
			return text
		}
	}
	return ""
}

func fileFieldText(f *FileField) string {
	if f == nil || f.Extracted == nil || f.Extracted.Text == nil {
		return ""
	}
	return f.Extracted.Text.Text
}

func joinedTextBodies(r *Resource) string {
	if r.Data == nil || len(r.Data.Texts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r.Data.Texts))
	for k := range r.Data.Texts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	bodies := make([]string, 0, len(keys))
	for _, k := range keys {
		if t := r.Data.Texts[k]; t != nil && t.Body != "" {
			bodies = append(bodies, t.Body)
		}
	}
	return strings.Join(bodies, " ")
}
