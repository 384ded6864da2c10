package domain

import (
	"encoding/json"
	"testing"
)

func TestAssetJSONShape(t *testing.T) {
	a := Asset{ID: "a1", Src: "data:image/png;base64,AAAA", Prompt: "a knight", Origin: OriginGenerated}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["type"] != "ai" {
		t.Fatalf("origin must serialize under key \"type\" as \"ai\", got %v", m["type"])
	}
	if _, ok := m["prompt"]; !ok {
		t.Fatalf("prompt missing")
	}

	// Uploaded assets carry no prompt and must omit the field entirely.
	b, err = json.Marshal(Asset{ID: "a2", Src: "data:image/png;base64,AAAA", Origin: OriginUploaded})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	m = map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["prompt"]; ok {
		t.Fatalf("empty prompt must be omitted")
	}
}

func TestKindValidAndLabel(t *testing.T) {
	for _, k := range Kinds() {
		if !k.Valid() {
			t.Fatalf("kind %q should be valid", k)
		}
		if k.Label() == "" {
			t.Fatalf("kind %q has empty label", k)
		}
	}
	if AssetKind("spaceship").Valid() {
		t.Fatalf("unknown kind should not be valid")
	}
}
