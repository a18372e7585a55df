package receipt

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetContentType is the MIME type of ExportReceipts output
const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	receiptsSheet = "Receipts"
	itemsSheet    = "Items"
)

var (
	receiptHeaders = []string{"ID", "Date", "Store", "Category", "Payment Method", "Subtotal", "Tax", "Total", "Items", "Status"}
	itemHeaders    = []string{"Receipt ID", "Date", "Store", "Item", "Quantity", "Price"}
)

// ExportReceipts writes the receipts selected by filter as an XLSX workbook
// with one sheet of receipts and one of their line items. The filter's
// limit applies as for ListReceipts.
func (s *Service) ExportReceipts(w io.Writer, filter Filter) error {
	receipts, err := s.ListReceipts(filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("creating items sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	receiptRows := make([][]any, 0, len(receipts))
	var itemRows [][]any
	for _, r := range receipts {
		date := r.Date.Format("2006-01-02")
		receiptRows = append(receiptRows, []any{
			r.ID, date, r.StoreName, string(r.Category), string(r.PaymentMethod),
			optional(r.Subtotal), optional(r.Tax), optional(r.Total),
			len(r.Items), string(r.Status),
		})
		for _, item := range r.Items {
			itemRows = append(itemRows, []any{r.ID, date, r.StoreName, item.Name, item.Quantity, item.Price})
		}
	}

	if err := writeSheet(f, receiptsSheet, receiptHeaders, receiptRows, headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, itemsSheet, itemHeaders, itemRows, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing spreadsheet: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	for i, row := range append([][]any{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// optional renders a missing amount as an empty cell
func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
