package serename

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

// resaveText runs a text resaver over input bytes.
func resaveText(t *testing.T, r Resaver, input string, renames RenameMap, newAssetFN string) string {
	t.Helper()

	var out bytes.Buffer
	if err := r.Resave(bytes.NewReader([]byte(input)), &out, renames, newAssetFN); err != nil {
		t.Fatalf("Resave: %v", err)
	}

	return out.String()
}

func TestLuaResaver_RewritesCalls(t *testing.T) {
	t.Parallel()

	input := "local m = LoadResource(\"Content/Old.tex\") -- comment\n" +
		"print(\"Content/Old.tex\")\n" +
		"dofile('Scripts/Old.lua') LoadResource(\"Content/Old.tex\")\n"
	renames := RenameMap{
		"Content/Old.tex": "Content/New.tex",
		"Scripts/Old.lua": "Scripts/New.lua",
	}

	got := resaveText(t, LuaResaver{}, input, renames, "")
	want := "local m = LoadResource(\"Content/New.tex\") -- comment\n" +
		"print(\"Content/Old.tex\")\n" +
		"dofile(\"Scripts/New.lua\") LoadResource(\"Content/New.tex\")\n"

	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestLuaResaver_PreservesBOMAndCRLF(t *testing.T) {
	t.Parallel()

	input := string(utf8BOM) + "LoadResource(\"Content/Old.tex\")\r\nkeep me\r\n"
	got := resaveText(t, LuaResaver{}, input, RenameMap{"Content/Old.tex": "Content/New.tex"}, "")
	want := string(utf8BOM) + "LoadResource(\"Content/New.tex\")\r\nkeep me\r\n"

	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNfoResaver_RewritesKnownKeysOnly(t *testing.T) {
	t.Parallel()

	input := "LEVEL=1\n" +
		"LOADING_SCREEN=\"Content/A.tex\"\n" +
		"COMMENT=\"Content/A.tex\"\n" +
		"NETRICSA=\"Content/A.tex\" trailing\n"
	renames := RenameMap{"Content/A.tex": "Content/B.tex"}

	got := resaveText(t, NfoResaver{}, input, renames, "")
	want := "LEVEL=1\n" +
		"LOADING_SCREEN=\"Content/B.tex\"\n" +
		"COMMENT=\"Content/A.tex\"\n" +
		"NETRICSA=\"Content/B.tex\" trailing\n"

	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestNfoResaver_PreservesBOM(t *testing.T) {
	t.Parallel()

	input := string(utf8BOM) + "LOADING_SCREEN=\"Content/A.tex\"\n"
	got := resaveText(t, NfoResaver{}, input, RenameMap{"Content/A.tex": "Content/B.tex"}, "")

	if !strings.HasPrefix(got, string(utf8BOM)) {
		t.Fatal("BOM dropped")
	}
	if !strings.Contains(got, "Content/B.tex") {
		t.Fatal("path not rewritten")
	}
}

func TestTextMetaResaver_PathLiterals(t *testing.T) {
	t.Parallel()

	input := "MetaText v1\n" +
		"mdl_strModel = @\"Content/Old.mdl\";\n" +
		"mdl_strOther = @\"Content/Keep.mdl\";\n"
	renames := RenameMap{"Content/Old.mdl": "Content/New.mdl"}

	got := resaveText(t, TextMetaResaver{}, input, renames, "")
	want := "MetaText v1\n" +
		"mdl_strModel = @\"Content/New.mdl\";\n" +
		"mdl_strOther = @\"Content/Keep.mdl\";\n"

	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestTextMetaResaver_SelfRename(t *testing.T) {
	t.Parallel()

	input := "MetaText v1\n" +
		"rf_strAssetFN = @\"Content/Old.tex\";\n" +
		"rf_ulAssetUID = 4660;\n" +
		"rf_other = 1;\n"

	got := resaveText(t, TextMetaResaver{}, input, RenameMap{}, "Content/New.tex")

	lines := strings.Split(got, "\n")
	if lines[1] != "rf_strAssetFN = @\"Content/New.tex\";" {
		t.Fatalf("asset filename line: %q", lines[1])
	}

	uidLine := lines[2]
	if !strings.HasPrefix(uidLine, "rf_ulAssetUID = ") || !strings.HasSuffix(uidLine, ";") {
		t.Fatalf("uid line shape: %q", uidLine)
	}

	uidStr := strings.TrimSuffix(strings.TrimPrefix(uidLine, "rf_ulAssetUID = "), ";")
	if _, err := strconv.ParseUint(uidStr, 10, 32); err != nil {
		t.Fatalf("uid %q is not a decimal uint32: %v", uidStr, err)
	}
	if uidStr == "4660" {
		t.Fatal("uid was not regenerated")
	}

	if lines[3] != "rf_other = 1;" {
		t.Fatalf("unrelated line changed: %q", lines[3])
	}
}

func TestTextMetaResaver_NoTrailingNewlineGained(t *testing.T) {
	t.Parallel()

	input := "MetaText v1\nmdl_strModel = @\"Content/Old.mdl\";"
	got := resaveText(t, TextMetaResaver{}, input, RenameMap{"Content/Old.mdl": "Content/New.mdl"}, "")

	if strings.HasSuffix(got, "\n") {
		t.Fatal("output gained a trailing newline")
	}
	if !strings.HasSuffix(got, "@\"Content/New.mdl\";") {
		t.Fatalf("final line not rewritten: %q", got)
	}
}
