package serename

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
)

func TestStreamReferencesAny_BinaryMeta(t *testing.T) {
	t.Parallel()

	input := externalFileFixture(binary.LittleEndian, "Content/Old.bin")

	hit, err := StreamReferencesAny(bytes.NewReader(input), "x.mdl", NewPathSet([]string{"Content/Old.bin"}))
	if err != nil {
		t.Fatalf("StreamReferencesAny: %v", err)
	}
	if !hit {
		t.Error("expected a hit for the external file path")
	}

	miss, err := StreamReferencesAny(bytes.NewReader(input), "x.mdl", NewPathSet([]string{"Content/Other.bin"}))
	if err != nil {
		t.Fatalf("StreamReferencesAny: %v", err)
	}
	if miss {
		t.Error("unexpected hit for an unrelated path")
	}
}

func TestStreamReferencesAny_BinaryMeta_BigEndian(t *testing.T) {
	t.Parallel()

	input := externalFileFixture(binary.BigEndian, "Content/Old.bin")

	hit, err := StreamReferencesAny(bytes.NewReader(input), "x.mdl", NewPathSet([]string{"Content/Old.bin"}))
	if err != nil {
		t.Fatalf("StreamReferencesAny: %v", err)
	}
	if !hit {
		t.Error("expected a hit in the big-endian meta")
	}
}

func TestStreamReferencesAny_TextFormats(t *testing.T) {
	t.Parallel()

	targets := NewPathSet([]string{"Content/A.tex"})

	cases := []struct {
		name  string
		path  string
		input string
		want  bool
	}{
		{"lua hit", "s.lua", "LoadResource(\"Content/A.tex\")\n", true},
		{"lua miss outside call", "s.lua", "print(\"Content/A.tex\")\n", false},
		{"nfo hit", "level.nfo", string(utf8BOM) + "LEVEL=1\nTHUMBNAIL=\"Content/A.tex\"\n", true},
		{"nfo miss on unknown key", "level.nfo", string(utf8BOM) + "LEVEL=1\nCOMMENT=\"Content/A.tex\"\n", false},
		{"textmeta hit", "m.mdl", "MetaText v1\nk = @\"Content/A.tex\";\n", true},
		{"textmeta miss", "m.mdl", "MetaText v1\nk = @\"Content/B.tex\";\n", false},
		{"plain never hits", "a.bin", "Content/A.tex", false},
	}

	for _, tc := range cases {
		got, err := StreamReferencesAny(bytes.NewReader([]byte(tc.input)), tc.path, targets)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFindReferencingFiles(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	root := "/game"

	write := func(rel string, data []byte) {
		if err := afero.WriteFile(fs, root+"/"+rel, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	write("Scripts/a.lua", []byte("LoadResource(\"Content/Old.tex\")\n"))
	write("Scripts/b.lua", []byte("print('nothing')\n"))
	write("Content/world.nfo", []byte(string(utf8BOM)+"LEVEL=1\nNETRICSA=\"Content/Old.tex\"\n"))
	write("Content/data.bin", []byte{1, 2, 3})
	write("Content/meta.mdl", externalFileFixture(binary.LittleEndian, "Content/Old.tex"))

	hits, err := FindReferencingFiles(
		context.Background(),
		fs,
		root,
		[]string{"Scripts/a.lua", "Scripts/b.lua", "Content/world.nfo", "Content/data.bin", "Content/meta.mdl"},
		NewPathSet([]string{"Content/Old.tex"}),
		2,
	)
	if err != nil {
		t.Fatalf("FindReferencingFiles: %v", err)
	}

	want := []string{"Content/meta.mdl", "Content/world.nfo", "Scripts/a.lua"}
	if len(hits) != len(want) {
		t.Fatalf("hits=%v, want %v", hits, want)
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Fatalf("hits=%v, want %v", hits, want)
		}
	}
}
