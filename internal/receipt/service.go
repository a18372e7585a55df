package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-tracker/internal/parsing"
	"github.com/zombor/receipt-tracker/internal/scanning"
)

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// TextParser turns OCR text into receipt fields
type TextParser interface {
	Parse(text string) (*parsing.ParsedReceipt, error)
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles receipt operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	parser      TextParser
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with the default parser, UUID IDs and
// the wall clock
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, parsing.NewParser(), uuidGenerator{}, defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, parser TextParser, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		parser:      parser,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaces      = regexp.MustCompile(`\s+`)
)

const maxFilenameBase = 50

// sanitizeFilename shortens phone-generated upload names and removes
// anything that is not safe in a path
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if unsafeFilenameChars.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(base, ""))
	base = filenameSpaces.ReplaceAllString(base, "_")
	if len(base) > maxFilenameBase {
		base = base[:maxFilenameBase]
	}
	if base == "" {
		base = "receipt"
	}
	return base + ext
}

// ProcessReceipt stores an uploaded receipt, runs OCR and parses the text.
// When OCR or parsing fails the receipt is still saved with StatusFailed so
// it can be reprocessed later; the failed receipt is returned together with
// the error.
func (s *Service) ProcessReceipt(ctx context.Context, ownerID, filename string, data []byte, contentType string) (*Receipt, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	receipt := &Receipt{
		ID:          id,
		OwnerID:     ownerID,
		Date:        now,
		Items:       []parsing.LineItem{},
		Category:    parsing.CategoryOther,
		Filename:    savedPath,
		ContentType: contentType,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.recognize(ctx, receipt, data); err != nil {
		slog.Error("Failed to process receipt",
			"id", id,
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return s.fail(receipt, err)
	}

	if err := s.db.SaveReceipt(receipt); err != nil {
		if delErr := s.storage.Delete(savedPath); delErr != nil {
			slog.Warn("Failed to clean up file", "filename", savedPath, "error", delErr)
		}
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}

	slog.Info("Processed receipt", "id", id, "store", receipt.StoreName, "items", len(receipt.Items))
	return receipt, nil
}

// recognize runs OCR on the file and parses the result into the receipt
func (s *Service) recognize(ctx context.Context, receipt *Receipt, data []byte) error {
	text, err := s.scanner.ExtractText(ctx, data, receipt.ContentType)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}
	receipt.OCRText = text
	return s.parse(receipt)
}

func (s *Service) parse(receipt *Receipt) error {
	parsed, err := s.parser.Parse(receipt.OCRText)
	if err != nil {
		return fmt.Errorf("parsing receipt: %w", err)
	}
	receipt.applyParsed(parsed)
	receipt.Status = StatusProcessed
	receipt.Error = ""
	return nil
}

// fail records cause on the receipt and saves it as failed
func (s *Service) fail(receipt *Receipt, cause error) (*Receipt, error) {
	receipt.Status = StatusFailed
	receipt.Error = cause.Error()
	receipt.UpdatedAt = s.timeSource.Now()
	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving failed receipt: %w (after %w)", err, cause)
	}
	return receipt, cause
}

// ReparseReceipt runs the parser again on the stored OCR text
func (s *Service) ReparseReceipt(id string) (*Receipt, error) {
	receipt, err := s.GetReceipt(id)
	if err != nil {
		return nil, err
	}

	if err := s.parse(receipt); err != nil {
		return s.fail(receipt, err)
	}
	return s.save(receipt)
}

// ReprocessReceipt runs OCR and the parser again on the stored file
func (s *Service) ReprocessReceipt(ctx context.Context, id string) (*Receipt, error) {
	receipt, err := s.GetReceipt(id)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, fmt.Errorf("getting receipt file: %w", err)
	}

	if err := s.recognize(ctx, receipt, data); err != nil {
		slog.Error("Failed to reprocess receipt", "id", id, "error", err)
		return s.fail(receipt, err)
	}
	return s.save(receipt)
}

func (s *Service) save(receipt *Receipt) (*Receipt, error) {
	receipt.UpdatedAt = s.timeSource.Now()
	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	return receipt, nil
}

// ParseText parses OCR text without storing anything
func (s *Service) ParseText(text string) (*parsing.ParsedReceipt, error) {
	parsed, err := s.parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing text: %w", err)
	}
	return parsed, nil
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns the receipts selected by filter, newest first
func (s *Service) ListReceipts(filter Filter) ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return filter.Apply(receipts), nil
}

// DeleteReceipt removes a receipt and its file
func (s *Service) DeleteReceipt(id string) error {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	if err := s.storage.Delete(receipt.Filename); err != nil {
		// the record goes regardless
		slog.Warn("Failed to delete file", "filename", receipt.Filename, "error", err)
	}

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the uploaded file for a receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, receipt.ContentType, nil
}
