package compose

import (
	"strings"
	"testing"

	"storyboardstudio/internal/domain"
	"storyboardstudio/internal/imagedata"
	"storyboardstudio/internal/selection"
)

func dataURL(payload string) string {
	return imagedata.Image{MIME: "image/png", Data: []byte(payload)}.DataURL()
}

func TestAssembleProductAdExactShape(t *testing.T) {
	asset := domain.Asset{ID: "a", Src: dataURL("character-bytes"), Origin: domain.OriginGenerated}
	product := domain.Product{ID: "p", Src: dataURL("product-bytes")}

	parts, err := Assemble(selection.ModeProductAd, "X", Input{
		Assets:  []domain.Asset{asset},
		Product: &product,
	})
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("want 3 parts, got %d", len(parts))
	}
	if parts[0].IsText() || string(parts[0].Image.Data) != "character-bytes" {
		t.Fatalf("part 0 must be the character image")
	}
	if parts[1].IsText() || string(parts[1].Image.Data) != "product-bytes" {
		t.Fatalf("part 1 must be the product image")
	}
	want := "Create a product advertisement scene. The character provided should be interacting with or showcasing the product. Scene description: X"
	if !parts[2].IsText() || parts[2].Text != want {
		t.Fatalf("part 2 = %q, want %q", parts[2].Text, want)
	}
}

func TestAssembleImagesPrecedeSingleInstruction(t *testing.T) {
	assets := []domain.Asset{
		{ID: "a1", Src: dataURL("one")},
		{ID: "a2", Src: dataURL("two")},
		{ID: "a3", Src: dataURL("three")},
	}
	for _, mode := range []selection.Mode{selection.ModeNewScene, selection.ModeFromCharacters} {
		parts, err := Assemble(mode, "a prompt", Input{Assets: assets})
		if err != nil {
			t.Fatalf("%v: %v", mode, err)
		}
		if len(parts) != len(assets)+1 {
			t.Fatalf("%v: want %d parts, got %d", mode, len(assets)+1, len(parts))
		}
		for i := 0; i < len(assets); i++ {
			if parts[i].IsText() {
				t.Fatalf("%v: part %d should be an image", mode, i)
			}
		}
		last := parts[len(parts)-1]
		if !last.IsText() || !strings.HasSuffix(last.Text, "a prompt") {
			t.Fatalf("%v: trailing instruction malformed: %+v", mode, last)
		}
	}
}

func TestAssembleAssetOrderFollowsInput(t *testing.T) {
	assets := []domain.Asset{
		{ID: "z", Src: dataURL("zz")},
		{ID: "a", Src: dataURL("aa")},
	}
	parts, err := Assemble(selection.ModeFromCharacters, "p", Input{Assets: assets})
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if string(parts[0].Image.Data) != "zz" || string(parts[1].Image.Data) != "aa" {
		t.Fatalf("assembler must preserve the given asset order")
	}
}

func TestAssembleFromResult(t *testing.T) {
	res := domain.ResultScene{ID: "r", Src: dataURL("scene")}
	parts, err := Assemble(selection.ModeFromResult, "zoom out", Input{Result: &res})
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(parts) != 2 || parts[0].IsText() {
		t.Fatalf("unexpected parts: %+v", parts)
	}
	want := "Edit the provided scene based on the following instruction: zoom out"
	if parts[1].Text != want {
		t.Fatalf("instruction = %q, want %q", parts[1].Text, want)
	}
}

func TestAssembleMissingEntitiesYieldsEmpty(t *testing.T) {
	cases := []struct {
		name string
		mode selection.Mode
		in   Input
	}{
		{"product ad without product", selection.ModeProductAd, Input{Assets: []domain.Asset{{ID: "a", Src: dataURL("x")}}}},
		{"product ad without asset", selection.ModeProductAd, Input{Product: &domain.Product{ID: "p", Src: dataURL("x")}}},
		{"from result without result", selection.ModeFromResult, Input{}},
		{"new scene without assets", selection.ModeNewScene, Input{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parts, err := Assemble(tc.mode, "p", tc.in)
			if err != nil {
				t.Fatalf("Assemble error: %v", err)
			}
			if len(parts) != 0 {
				t.Fatalf("want empty part list, got %d parts", len(parts))
			}
		})
	}
}

func TestAssembleRejectsIdleAndEmptyPrompt(t *testing.T) {
	if _, err := Assemble(selection.ModeIdle, "p", Input{}); err == nil {
		t.Fatalf("idle mode must not be assembled")
	}
	if _, err := Assemble(selection.ModeNewScene, "", Input{}); err == nil {
		t.Fatalf("empty prompt must be rejected")
	}
}

func TestAssembleBadImageData(t *testing.T) {
	in := Input{Assets: []domain.Asset{{ID: "a", Src: "not-a-data-url"}}}
	if _, err := Assemble(selection.ModeNewScene, "p", in); err == nil {
		t.Fatalf("bad asset data must surface an error")
	}
}

func TestAssetPrompt(t *testing.T) {
	character := domain.AssetForm{
		Kind:        domain.KindCharacter,
		Description: "a tired detective",
		Gender:      "female",
		Ethnicity:   "East Asian",
	}
	p := AssetPrompt(character)
	if !strings.HasPrefix(p, "Create a high-quality, detailed image of a person: a tired detective.") {
		t.Fatalf("prompt lead-in wrong: %q", p)
	}
	if !strings.Contains(p, "Gender: female. Race: East Asian.") {
		t.Fatalf("character qualifiers missing: %q", p)
	}
	if !strings.Contains(p, "plain white background") {
		t.Fatalf("compositing qualifier missing: %q", p)
	}

	animal := domain.AssetForm{Kind: domain.KindAnimal, Description: "a corgi", Gender: "male"}
	p = AssetPrompt(animal)
	if strings.Contains(p, "Gender:") {
		t.Fatalf("gender must only apply to the person category: %q", p)
	}
	if !strings.Contains(p, "plain white background") {
		t.Fatalf("compositing qualifier missing for animal: %q", p)
	}

	scenery := domain.AssetForm{Kind: domain.KindScenery, Description: "a misty harbor"}
	p = AssetPrompt(scenery)
	if strings.Contains(p, "plain white background") {
		t.Fatalf("scenery must not get the compositing qualifier: %q", p)
	}
}

func TestContinuePrompt(t *testing.T) {
	if got := ContinuePrompt("the hero leaves"); got != "Continue the scene. the hero leaves" {
		t.Fatalf("ContinuePrompt = %q", got)
	}
}
