package project

import (
	"errors"
	"reflect"
	"testing"

	"storyboardstudio/internal/domain"
)

func sampleDoc() domain.ProjectDocument {
	return domain.ProjectDocument{
		Version: domain.ProjectVersion,
		Assets: []domain.Asset{
			{ID: "a1", Src: "data:image/png;base64,AAAA", Prompt: "a knight", Origin: domain.OriginGenerated},
			{ID: "a2", Src: "data:image/jpeg;base64,BBBB", Origin: domain.OriginUploaded},
		},
		Products: []domain.Product{{ID: "p1", Src: "data:image/png;base64,CCCC"}},
		Results: []domain.ResultScene{
			{ID: "r1", Src: "data:image/png;base64,DDDD"},
			{ID: "r2", Src: "data:image/png;base64,EEEE"},
		},
	}
}

func TestRoundTripPreservesEverything(t *testing.T) {
	doc := sampleDoc()
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}

func TestMarshalEmptyCollectionsAsArrays(t *testing.T) {
	data, err := Marshal(domain.ProjectDocument{Version: domain.ProjectVersion})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	// nil collections must still serialize as [] so the export always
	// parses back.
	if _, err := Parse(data); err != nil {
		t.Fatalf("empty project must round trip: %v", err)
	}
}

func TestParseRejectsWrongVersion(t *testing.T) {
	_, err := Parse([]byte(`{"version":2,"assets":[],"products":[],"results":[]}`))
	if !errors.Is(err, ErrImportRejected) {
		t.Fatalf("want ErrImportRejected, got %v", err)
	}
}

func TestParseRejectsMissingCollection(t *testing.T) {
	_, err := Parse([]byte(`{"version":1,"assets":[],"products":[]}`))
	if !errors.Is(err, ErrImportRejected) {
		t.Fatalf("missing results field: want ErrImportRejected, got %v", err)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{ this is not json`))
	if !errors.Is(err, ErrImportParse) {
		t.Fatalf("want ErrImportParse, got %v", err)
	}
}

func TestParseRejectsWrongShapes(t *testing.T) {
	cases := []string{
		`{"version":"1","assets":[],"products":[],"results":[]}`,       // version not an integer
		`{"version":1,"assets":{},"products":[],"results":[]}`,         // assets not an array
		`{"version":1,"assets":[{"id":"a"}],"products":[],"results":[]}`, // asset missing src
		`{"version":1,"assets":[{"id":"a","src":"s","type":"png"}],"products":[],"results":[]}`, // bad origin
		`[]`,
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); !errors.Is(err, ErrImportRejected) {
			t.Fatalf("Parse(%s): want ErrImportRejected, got %v", c, err)
		}
	}
}
