// Package scanning extracts the raw text of a receipt image. Providers only
// transcribe; turning the text into fields is left to the parsing package.
package scanning

import "context"

// Scanner defines the interface for receipt OCR providers
type Scanner interface {
	// ExtractText transcribes the receipt in an image or PDF. A receipt
	// with no readable text yields "" and no error.
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}

// transcriptionPrompt is shared by the LLM providers
const transcriptionPrompt = `You are reading a photographed or scanned shop receipt. Transcribe ALL printed text exactly as it appears, top to bottom.

Rules:
- Output one receipt line per line of text, keeping the left-to-right order of columns on that line
- Keep numbers, prices, currency markers (Rs., LKR, $, /=) and punctuation exactly as printed
- Do not correct spelling, translate, summarise, total or reformat anything
- Do not add commentary, headings or explanations
- Do not use markdown code blocks
- If the image contains no readable text, output nothing`
