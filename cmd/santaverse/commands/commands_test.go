package commands

import (
	"bytes"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"santaverse/internal/gallery"
	"santaverse/internal/storage"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SANTAVERSE_LOG_LEVEL", "error")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunChatOnboardingAndWishCard(t *testing.T) {
	card := filepath.Join(t.TempDir(), "card.png")
	in := strings.NewReader("\nI'm ada\n7\n/wish " + card + "\n/quit\n")
	var out bytes.Buffer

	if err := runChat(in, &out, 0); err != nil {
		t.Fatalf("chat: %v", err)
	}

	got := out.String()
	for _, want := range []string{"What is your name?", "Nice to meet you, Ada!", "Santa is typing...", "Wish card saved to " + card} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if _, err := os.Stat(card); err != nil {
		t.Fatalf("wish card not written: %v", err)
	}
}

func TestRunChatWishBeforeOnboarding(t *testing.T) {
	var out bytes.Buffer
	if err := runChat(strings.NewReader("/wish\n"), &out, 0); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(out.String(), "tell Santa your name and age first") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestComposeCommand(t *testing.T) {
	dir := t.TempDir()
	frame := filepath.Join(dir, "frame.png")
	overlay := filepath.Join(dir, "santa.png")
	result := filepath.Join(dir, "out.jpg")
	writePNG(t, frame, 120, 90, color.RGBA{G: 200, A: 255})
	writePNG(t, overlay, 20, 30, color.RGBA{R: 255, A: 255})

	out, err := run(t, "compose", "--frame", frame, "--overlay", overlay, "--size", "500", "--out", result)
	if err != nil {
		t.Fatalf("compose: %v (%s)", err, out)
	}
	if !strings.Contains(out, "size 100%") {
		t.Fatalf("expected clamped size in output, got %q", out)
	}

	f, err := os.Open(result)
	if err != nil {
		t.Fatalf("open result: %v", err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 90 {
		t.Fatalf("unexpected result size %v", b)
	}
}

func TestComposeCommandMissingFrame(t *testing.T) {
	_, err := run(t, "compose", "--frame", filepath.Join(t.TempDir(), "nope.png"))
	if err == nil || err.Error() != "The elves dropped the camera. Try again." {
		t.Fatalf("expected capture failure notice, got %v", err)
	}
}

func TestGalleryCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SANTAVERSE_STORE_DRIVER", "sqlite")
	t.Setenv("SANTAVERSE_SQLITE_PATH", filepath.Join(dir, "g.db"))

	img := filepath.Join(dir, "tree.png")
	writePNG(t, img, 4, 4, color.White)

	out, err := run(t, "gallery", "share", img, "--user", "Ada")
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	fields := strings.Fields(out)
	if len(fields) < 4 || fields[3] != "Ada" {
		t.Fatalf("unexpected share output %q", out)
	}
	id := fields[1]

	if out, err = run(t, "gallery", "like", id); err != nil || !strings.Contains(out, "1 likes") {
		t.Fatalf("like: %v %q", err, out)
	}
	if out, err = run(t, "gallery", "list"); err != nil || !strings.Contains(out, id) {
		t.Fatalf("list: %v %q", err, out)
	}
	if _, err = run(t, "gallery", "like", "missing"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestGalleryShareFull(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SANTAVERSE_STORE_DRIVER", "memory")
	t.Setenv("SANTAVERSE_GALLERY_QUOTA_BYTES", "8")

	img := filepath.Join(dir, "tree.png")
	writePNG(t, img, 4, 4, color.White)

	_, err := run(t, "gallery", "share", img)
	if err == nil || !strings.HasPrefix(err.Error(), "Gallery Full!") {
		t.Fatalf("expected gallery full notice, got %v", err)
	}
	if !errors.Is(err, storage.ErrStorageFull) {
		t.Fatalf("expected the storage error to be kept, got %v", err)
	}
}

func TestGalleryShareKeepsUnderlyingError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SANTAVERSE_STORE_DRIVER", "sqlite")
	t.Setenv("SANTAVERSE_SQLITE_PATH", filepath.Join(dir, "g.db"))

	img := filepath.Join(dir, "tree.png")
	writePNG(t, img, 4, 4, color.White)

	// A table with the wrong shape makes the insert fail inside the store.
	db, err := sql.Open("sqlite3", filepath.Join(dir, "g.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE gallery_items (seq INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	db.Close()

	_, err = run(t, "gallery", "share", img)
	if err == nil {
		t.Fatal("expected share to fail")
	}
	if !strings.HasPrefix(err.Error(), gallery.NoticeShareFailed) {
		t.Fatalf("expected generic notice, got %v", err)
	}
	if err.Error() == gallery.NoticeShareFailed || !strings.Contains(err.Error(), "gallery") {
		t.Fatalf("expected the store error next to the notice, got %v", err)
	}
}
