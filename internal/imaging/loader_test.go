package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	src.SetRGBA(3, 3, color.RGBA{0, 0, 255, 255})
	return src
}

func pngArtifact(name string, img image.Image) Artifact {
	return Artifact{Name: name, Write: func(w io.Writer) error { return EncodePNG(w, img) }}
}

func TestCommitPNG_ThenLoad(t *testing.T) {
	dir := t.TempDir()

	paths, err := Commit(dir, pngArtifact("test.png", testImage()))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	loaded, err := Load(paths[0])
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Bounds().Dx() != 4 || loaded.Bounds().Dy() != 4 {
		t.Errorf("dimensions: got %dx%d, want 4x4", loaded.Bounds().Dx(), loaded.Bounds().Dy())
	}

	r, g, b, _ := loaded.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("pixel (0,0): got (%d,%d,%d), want (255,0,0)", r>>8, g>>8, b>>8)
	}
}

func TestEncodePNG_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := EncodePNG(&a, testImage()); err != nil {
		t.Fatal(err)
	}
	if err := EncodePNG(&b, testImage()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("same image encoded to different bytes")
	}
}

func TestCommit_FailureLeavesNoFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	_, err := Commit(dir,
		Artifact{Name: "a.txt", Write: func(w io.Writer) error { _, err := io.WriteString(w, "new a"); return err }},
		Artifact{Name: "b.txt", Write: func(w io.Writer) error { return boom }},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "b.txt" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory should hold only the old b.txt, got %v", names)
	}
	if got, _ := os.ReadFile(filepath.Join(dir, "b.txt")); string(got) != "old" {
		t.Errorf("b.txt was modified: %q", got)
	}
}

func TestCommit_CreatesDirectoryAndReplaces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	write := func(s string) Artifact {
		return Artifact{Name: "x.txt", Write: func(w io.Writer) error { _, err := io.WriteString(w, s); return err }}
	}
	if _, err := Commit(dir, write("first")); err != nil {
		t.Fatal(err)
	}
	paths, err := Commit(dir, write("second"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
	info, err := os.Stat(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode: got %v, want 0644", info.Mode().Perm())
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/image.png")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.gif")
	if err := os.WriteFile(path, []byte("not a real image"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoad_Formats(t *testing.T) {
	src := testImage()
	tests := []struct {
		name   string
		file   string
		encode func(io.Writer, image.Image) error
		exact  bool
	}{
		{name: "jpeg", file: "test.jpg", encode: func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }},
		{name: "bmp", file: "test.bmp", encode: bmp.Encode, exact: true},
		{name: "tiff", file: "test.tiff", encode: func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }, exact: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.encode(f, src); err != nil {
				f.Close()
				t.Fatal(err)
			}
			f.Close()

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if loaded.Bounds().Dx() != 4 || loaded.Bounds().Dy() != 4 {
				t.Errorf("dimensions: got %dx%d, want 4x4", loaded.Bounds().Dx(), loaded.Bounds().Dy())
			}
			if !tt.exact {
				return
			}
			r, g, b, _ := loaded.At(3, 3).RGBA()
			if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
				t.Errorf("pixel (3,3): got (%d,%d,%d), want (0,0,255)", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestLoad_CorruptPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(path, []byte("not a real png"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for corrupt PNG")
	}
}
