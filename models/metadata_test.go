package models

import "testing"

func TestMetadataMerge(t *testing.T) {
	meta := Metadata{
		ContentHash: "cafe01",
		ForeignID:   "filing-7",
		Title:       "Old Title",
		Author:      "Jo Bloggs",
	}

	meta.Merge(Metadata{
		ContentHash: "poison",
		ForeignID:   "poison",
		Title:       "New Title",
		Countries:   []string{"de"},
	})

	if meta.ContentHash != "cafe01" || meta.ForeignID != "filing-7" {
		t.Errorf("protected fields overwritten: %+v", meta)
	}
	if meta.Title != "New Title" {
		t.Errorf("expected title to update, got %q", meta.Title)
	}
	if meta.Author != "Jo Bloggs" {
		t.Errorf("unset incoming field clobbered author: %q", meta.Author)
	}
	if len(meta.Countries) != 1 || meta.Countries[0] != "de" {
		t.Errorf("expected countries to update, got %v", meta.Countries)
	}
}

func TestMetadataValidate(t *testing.T) {
	valid := Metadata{
		SourceURL: "https://example.com/report.pdf",
		Languages: []string{"en", "deu"},
		Countries: []string{"gb"},
		Dates:     []string{"2016-03-01"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid metadata, got %v", err)
	}

	cases := map[string]Metadata{
		"bad url":      {SourceURL: "::not-a-url"},
		"bad language": {Languages: []string{"english"}},
		"bad country":  {Countries: []string{"deu"}},
		"bad date":     {Dates: []string{"03/01/2016"}},
	}
	for name, meta := range cases {
		if err := meta.Validate(); err == nil {
			t.Errorf("%v: expected validation error", name)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	meta := Metadata{Title: "  Annual Report  ", FileName: "report.pdf"}
	if meta.DisplayTitle() != "Annual Report" {
		t.Errorf("got %q", meta.DisplayTitle())
	}

	meta = Metadata{FileName: "report.pdf"}
	if meta.DisplayTitle() != "report.pdf" {
		t.Errorf("got %q", meta.DisplayTitle())
	}
}
