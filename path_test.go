package serename

import (
	"errors"
	"testing"
)

func TestNormalizeAssetPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Content/Old.tex", "Content/Old.tex"},
		{`Content\Sub\Old.tex`, "Content/Sub/Old.tex"},
		{"./Content/Old.tex", "Content/Old.tex"},
		{"/Content/Old.tex", "Content/Old.tex"},
		{"  Content/Old.tex  ", "Content/Old.tex"},
		{"Content//Old.tex", "Content/Old.tex"},
		{"", ""},
		{".", ""},
	}

	for _, tc := range cases {
		if got := NormalizeAssetPath(tc.in); got != tc.want {
			t.Errorf("NormalizeAssetPath(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateAssetPath(t *testing.T) {
	t.Parallel()

	if got, err := ValidateAssetPath(`Content\Old.tex`); err != nil || got != "Content/Old.tex" {
		t.Errorf("valid path: got %q, %v", got, err)
	}

	for _, bad := range []string{"", "..", "../escape", "Content/../../x", "C:/Games/x.tex", "a\x00b"} {
		if _, err := ValidateAssetPath(bad); !errors.Is(err, ErrInvalidAssetPath) {
			t.Errorf("ValidateAssetPath(%q): got %v, want ErrInvalidAssetPath", bad, err)
		}
	}
}

func TestPathExtLower(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Content/Old.TEX", ".tex"},
		{"Scripts/a.Lua", ".lua"},
		{"noext", ""},
		{"dir.v2/noext", ""},
	}

	for _, tc := range cases {
		if got := pathExtLower(tc.in); got != tc.want {
			t.Errorf("pathExtLower(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
