package sources

import "testing"

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		uri     string
		want    string // expected concrete handler type, via a type switch below
		wantErr bool
	}{
		{"file:foo.txt", "*sources.FileHandler", false},
		{"foo.txt", "*sources.FileHandler", false},
		{"text:hi", "*sources.TextHandler", false},
		{"md_dir:docs", "*sources.CollectionHandler", false},
		{"glob:*.go", "*sources.CollectionHandler", false},
		{"git:diff", "*sources.GitHandler", false},
		{"ftp:nope", "", true},
	}

	for _, c := range cases {
		h, err := r.Resolve(c.uri)
		if c.wantErr {
			if err == nil {
				t.Errorf("Resolve(%q) expected error, got none", c.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%q) error = %v", c.uri, err)
			continue
		}
		if got := typeName(h); got != c.want {
			t.Errorf("Resolve(%q) handler = %s, want %s", c.uri, got, c.want)
		}
	}
}

func typeName(h Handler) string {
	switch h.(type) {
	case *FileHandler:
		return "*sources.FileHandler"
	case *TextHandler:
		return "*sources.TextHandler"
	case *CollectionHandler:
		return "*sources.CollectionHandler"
	case *GitHandler:
		return "*sources.GitHandler"
	default:
		return "unknown"
	}
}
