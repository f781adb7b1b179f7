package kb

import (
	"path/filepath"
	"testing"
)

func testPassages() []Passage {
	return []Passage{
		{Index: 0, Text: "Iron deficiency anemia causes fatigue and pallor", Source: "anemia.txt", ChunkIndex: 0},
		{Index: 1, Text: "Heart failure presents with dyspnea and edema", Source: "heart_failure.txt", ChunkIndex: 0},
		{Index: 2, Text: "Orthopnea is common in advanced heart failure", Source: "heart_failure.txt", ChunkIndex: 1},
		{Index: 3, Text: "Pneumonia is an infection causing fever and productive cough", Source: "pneumonia.txt", ChunkIndex: 0},
	}
}

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := OpenCatalog(MemoryCatalog)
	if err != nil {
		t.Fatalf("OpenCatalog() error = %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	n, err := cat.Rebuild(testPassages())
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("Rebuild() = %d, want 4", n)
	}
	return cat
}

func TestCatalog_Search(t *testing.T) {
	cat := setupCatalog(t)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantFirst int
	}{
		{"single term", "fatigue", 1, 0},
		{"implicit AND", "heart dyspnea", 1, 1},
		{"source name", "pneumonia", 1, 3},
		{"phrase with punctuation", "productive cough.", 1, 3},
		{"no match", "tuberculosis", 0, -1},
		{"bare keyword", "AND", 0, -1},
		{"trailing keyword as phrase", "fatigue AND", 1, 0},
		{"dangling NOT", "heart NOT", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cat.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("Search(%q) returned %d passages, want %d", tt.query, len(got), tt.wantCount)
			}
			if tt.wantFirst >= 0 && got[0].Index != tt.wantFirst {
				t.Errorf("Search(%q)[0].Index = %d, want %d", tt.query, got[0].Index, tt.wantFirst)
			}
		})
	}
}

func TestCatalog_SearchLimit(t *testing.T) {
	cat := setupCatalog(t)

	got, err := cat.Search("failure", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}

	empty, err := cat.Search("   ", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("blank query returned %d passages", len(empty))
	}
}

func TestCatalog_CountAndSources(t *testing.T) {
	cat := setupCatalog(t)

	n, err := cat.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 4 {
		t.Errorf("Count() = %d, want 4", n)
	}

	sources, err := cat.Sources()
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	want := []SourceStat{
		{Source: "anemia.txt", Passages: 1},
		{Source: "heart_failure.txt", Passages: 2},
		{Source: "pneumonia.txt", Passages: 1},
	}
	if len(sources) != len(want) {
		t.Fatalf("Sources() = %v, want %v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("Sources()[%d] = %+v, want %+v", i, sources[i], want[i])
		}
	}
}

func TestCatalog_RebuildReplaces(t *testing.T) {
	cat := setupCatalog(t)

	if _, err := cat.Rebuild(testPassages()[:1]); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	all, err := cat.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 || all[0].Source != "anemia.txt" {
		t.Errorf("List() = %+v, want only the anemia passage", all)
	}
	if got, _ := cat.Search("heart", 10); len(got) != 0 {
		t.Errorf("stale FTS rows after rebuild: %+v", got)
	}
}

func TestCatalog_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	cat, err := OpenCatalog(path)
	if err != nil {
		t.Fatalf("OpenCatalog() error = %v", err)
	}
	if _, err := cat.Rebuild(testPassages()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	cat.Close()

	reopened, err := OpenCatalog(path)
	if err != nil {
		t.Fatalf("OpenCatalog() error = %v", err)
	}
	defer reopened.Close()
	if n, _ := reopened.Count(); n != 4 {
		t.Errorf("Count() after reopen = %d, want 4", n)
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"chest pain", "chest pain"},
		{"  fever ", "fever"},
		{"ST-elevation", `"ST-elevation"`},
		{`say "hi"`, `"say ""hi"""`},
		{"AND", `"AND"`},
		{"heart NOT", `"heart NOT"`},
		{"chest OR abdomen", `"chest OR abdomen"`},
		{"NEAR", `"NEAR"`},
		{"heart and lungs", "heart and lungs"},
		{"ANDROGEN", "ANDROGEN"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.input); got != tt.expected {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
