package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kbbot/internal/models"

	"go.uber.org/zap"
)

func TestExtract_PlainText(t *testing.T) {
	e := New(zap.NewNop())

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"utf8", []byte("Our refund policy allows 30 days.\n"), "Our refund policy allows 30 days."},
		{"byte order mark", []byte("\xef\xbb\xbfHello"), "Hello"},
		{"latin-1 fallback", []byte("caf\xe9 cr\xe8me"), "café crème"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(models.FileTypeTXT, tt.data)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_Markdown(t *testing.T) {
	e := New(zap.NewNop())
	source := "# Refund Policy\n\nRefunds are allowed within **30 days**.\n\n- Keep the receipt\n- Contact [support](https://example.com)\n"

	got, err := e.Extract(models.FileTypeMD, []byte(source))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	for _, want := range []string{"Refund Policy", "Refunds are allowed within 30 days.", "Keep the receipt", "Contact support"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown text %q missing %q", got, want)
		}
	}
	for _, markup := range []string{"#", "**", "](", "<p>"} {
		if strings.Contains(got, markup) {
			t.Errorf("markdown text %q still contains %q", got, markup)
		}
	}
}

func TestExtract_MarkdownNestedBlocksOnce(t *testing.T) {
	e := New(zap.NewNop())
	source := "- refund policy\n  - nested warranty\n\n> # Quoted heading\n> body text\n"

	got, err := e.Extract(models.FileTypeMD, []byte(source))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	for _, want := range []string{"refund policy", "nested warranty", "Quoted heading", "body text"} {
		if n := strings.Count(got, want); n != 1 {
			t.Errorf("%q appears %d times in %q, want 1", want, n, got)
		}
	}
	if strings.Index(got, "Quoted heading") > strings.Index(got, "body text") {
		t.Errorf("markdown text %q lost block order", got)
	}
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := New(zap.NewNop()).Extract(models.FileType("xlsx"), []byte("data"))
	if !errors.Is(err, ErrUnsupported) || !errors.Is(err, ErrExtraction) {
		t.Errorf("Extract() error = %v, want ErrUnsupported and ErrExtraction", err)
	}
}

func TestExtract_CorruptInputWrapsErrExtraction(t *testing.T) {
	e := New(zap.NewNop())

	for _, ft := range []models.FileType{models.FileTypePDF, models.FileTypeDOCX} {
		t.Run(string(ft), func(t *testing.T) {
			if _, err := e.Extract(ft, []byte("definitely not a real document")); !errors.Is(err, ErrExtraction) {
				t.Errorf("Extract() error = %v, want ErrExtraction", err)
			}
		})
	}
}

func TestExtract_RegisterOverrides(t *testing.T) {
	e := New(zap.NewNop())
	boom := errors.New("boom")
	e.Register(models.FileTypeTXT, func([]byte) (string, error) { return "", boom })

	_, err := e.Extract(models.FileTypeTXT, []byte("x"))
	if !errors.Is(err, boom) || !errors.Is(err, ErrExtraction) {
		t.Errorf("Extract() error = %v", err)
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("  shipping takes a week  "), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(zap.NewNop())
	got, err := e.ExtractFile(models.FileTypeTXT, path)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if got != "shipping takes a week" {
		t.Errorf("ExtractFile() = %q", got)
	}

	if _, err := e.ExtractFile(models.FileTypeTXT, filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, ErrExtraction) {
		t.Errorf("missing file error = %v, want ErrExtraction", err)
	}
}
