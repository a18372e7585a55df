package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ErrUnsupportedFormat is returned for uploads that are neither an image nor a PDF
var ErrUnsupportedFormat = errors.New("unsupported image format (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF)")

type sourceFormat int

const (
	formatPNG sourceFormat = iota
	formatPDF
	formatHEIC
	formatOther
)

// prepareImage returns the upload as PNG, which every provider accepts.
// PDFs are rasterised from their first page.
func prepareImage(data []byte, contentType string) ([]byte, error) {
	switch detectFormat(data, contentType) {
	case formatPNG:
		return data, nil
	case formatPDF:
		return renderPDF(data)
	case formatHEIC:
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return encodePNG(img)
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			if errors.Is(err, image.ErrFormat) {
				return nil, ErrUnsupportedFormat
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		return encodePNG(img)
	}
}

// detectFormat trusts the file's magic bytes over the declared content type,
// since phones often upload HEIC files labelled image/jpeg
func detectFormat(data []byte, contentType string) sourceFormat {
	if isHEIC(data) {
		return formatHEIC
	}

	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	switch {
	case strings.HasPrefix(mimeType, "application/pdf"):
		return formatPDF
	case strings.Contains(mimeType, "heic"), strings.Contains(mimeType, "heif"):
		return formatHEIC
	case strings.HasPrefix(mimeType, "image/png") && bytes.HasPrefix(data, pngSignature):
		return formatPNG
	default:
		return formatOther
	}
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// isHEIC looks for an ftyp box with a HEIF brand at offset 4
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func renderPDF(data []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
