package scanning

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// commandRunner runs an external program, feeding stdin and collecting stdout
type commandRunner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Tesseract implements the Scanner interface with a local tesseract binary
type Tesseract struct {
	binary   string
	language string
	runner   commandRunner
}

// NewTesseract creates a Tesseract scanner. language uses tesseract's codes,
// e.g. "eng" or "eng+sin".
func NewTesseract(binary, language string) (*Tesseract, error) {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("finding tesseract binary: %w", err)
	}
	return newTesseractWithRunner(path, language, execRunner{}), nil
}

func newTesseractWithRunner(binary, language string, runner commandRunner) *Tesseract {
	return &Tesseract{binary: binary, language: language, runner: runner}
}

// ExtractText pipes the image through `tesseract stdin stdout`
func (t *Tesseract) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	pngData, err := prepareImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	// --psm 6 reads the page as one block of text, which keeps receipt
	// columns on the same line.
	out, stderr, err := t.runner.Run(ctx, pngData, t.binary, "stdin", "stdout", "-l", t.language, "--psm", "6")
	if err != nil {
		return "", fmt.Errorf("running tesseract: %w: %s", err, bytes.TrimSpace(stderr))
	}

	return cleanTranscript(string(out)), nil
}

// Close is a no-op; each extraction runs its own process
func (t *Tesseract) Close() error {
	return nil
}
