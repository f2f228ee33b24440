package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// setupTestHome points HOME at a temp dir so config and database are
// isolated, and removes the scan delay.
func setupTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DURIANCARE_LATENCY_MS", "0")
	return home
}

func writeTestImage(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 12, 9))
	for x := 0; x < 12; x++ {
		for y := 0; y < 9; y++ {
			img.Set(x, y, color.RGBA{R: 110, G: 150, B: 30, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "durian.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// execute runs cmd with args and stdin, returning its output.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := cmd.Execute()
	return buf.String(), err
}
