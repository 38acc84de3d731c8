package score

import (
	"testing"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

func TestSourceWeight(t *testing.T) {
	tests := []struct {
		name string
		url  string
		kind model.SourceKind
		want float64
	}{
		{"official domain", "https://www.who.int/news/item/x", model.KindWebSearch, 0.95},
		{"fact-check domain", "https://snopes.com/fact-check/y", model.KindFactCheck, 0.92},
		{"news domain", "https://reuters.com/world/z", model.KindNews, 0.90},
		{"academic suffix", "https://medicine.example.edu/study", model.KindWebSearch, 0.80},
		{"unknown domain falls back to kind", "https://someblog.example.com/post", model.KindWebSearch, 0.55},
		{"no url falls back to kind", "", model.KindEncyclopedia, 0.80},
		{"port and path stripped", "https://www.cdc.gov:443/flu", model.KindNews, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SourceWeight(tt.url, tt.kind)
			if got != tt.want {
				t.Errorf("SourceWeight(%q, %s) = %v, want %v", tt.url, tt.kind, got, tt.want)
			}
		})
	}
}

func TestKindWeightUnknownKind(t *testing.T) {
	if got := KindWeight(model.SourceKind("carrier_pigeon")); got != 0.5 {
		t.Errorf("Unknown kind weight = %v, want 0.5", got)
	}
}

func TestDiversity(t *testing.T) {
	if got := Diversity(nil); got != 0 {
		t.Errorf("Empty set diversity = %v, want 0", got)
	}

	set := model.EvidenceSet{
		{Kind: model.KindNews},
		{Kind: model.KindNews},
		{Kind: model.KindFactCheck},
	}
	if got := Diversity(set); got != 0.5 {
		t.Errorf("Two of four kinds diversity = %v, want 0.5", got)
	}

	full := model.EvidenceSet{
		{Kind: model.KindNews},
		{Kind: model.KindFactCheck},
		{Kind: model.KindEncyclopedia},
		{Kind: model.KindWebSearch},
	}
	if got := Diversity(full); got != 1.0 {
		t.Errorf("All kinds diversity = %v, want 1.0", got)
	}
}
