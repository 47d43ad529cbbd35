package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slotcal/internal/database"
	"slotcal/internal/models"
	"slotcal/internal/timeutil"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// ExcelSink materializes the booking ledger as an .xlsx workbook. Each change
// rewrites the file from the database, so the workbook is always a full
// snapshot rather than an event log.
type ExcelSink struct {
	db      *database.DB
	dir     string
	logger  *zerolog.Logger
	timeout time.Duration
}

func NewExcelSink(db *database.DB, dir string, logger *zerolog.Logger) *ExcelSink {
	return &ExcelSink{
		db:      db,
		dir:     dir,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

func (e *ExcelSink) Name() string { return "excel" }

func (e *ExcelSink) UpsertBooking(_ *models.Booking) error {
	return e.rebuild()
}

func (e *ExcelSink) DeleteBooking(_ int64) error {
	return e.rebuild()
}

// FilePath returns where the workbook is written.
func (e *ExcelSink) FilePath() string {
	return filepath.Join(e.dir, "bookings.xlsx")
}

func (e *ExcelSink) rebuild() error {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	bookings, err := e.db.ListBookings(ctx)
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []interface{}{"ID", "Event", "Name", "Email", "Date", "Start", "End", "Created At"}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "H1", headerStyle)

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			b.ID,
			b.EventTitle,
			b.BookerName,
			b.BookerEmail,
			b.Date,
			timeutil.FormatClock(b.StartMinute),
			timeutil.FormatClock(b.EndMinute),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "D", 25)
	_ = f.SetColWidth(sheetName, "E", "H", 18)

	path := e.FilePath()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info().Str("file_path", path).Int("bookings", len(bookings)).Msg("bookings workbook written")
	return nil
}
