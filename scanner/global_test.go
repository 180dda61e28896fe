package scanner

import "testing"

func TestParseNpmList(t *testing.T) {
	data := []byte(`{
  "name": "lib",
  "dependencies": {
    "npm": {"version": "10.8.2"},
    "corepack": {"version": "0.29.3"},
    "evilpkg": {"version": "3.2.1", "overridden": false}
  }
}`)
	records, err := parseNpmList(data)
	if err != nil {
		t.Fatalf("parseNpmList: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	// Sorted by name for stable report order.
	want := []string{"corepack@0.29.3", "evilpkg@3.2.1", "npm@10.8.2"}
	for i, w := range want {
		if got := records[i].ID(); got != w {
			t.Errorf("records[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestParseNpmList_Empty(t *testing.T) {
	records, err := parseNpmList([]byte(`{"name":"lib"}`))
	if err != nil {
		t.Fatalf("parseNpmList: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestParseNpmList_Invalid(t *testing.T) {
	if _, err := parseNpmList([]byte("npm ERR! something broke")); err == nil {
		t.Fatal("expected decode error for non-JSON output")
	}
}
