package analytics

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

const (
	exportSheet   = "Appointments"
	maxExportDays = 366
)

var exportHeader = []any{
	"ID", "Date", "Start", "End", "Status",
	"Customer", "Phone", "Service", "Staff", "Price",
}

type ExportInput struct {
	Actor        policy.Actor
	BarbershopID uint
	From         string
	To           string
}

// ExportAppointments writes every appointment starting between From and
// To (inclusive dates, shop time zone) to w as an xlsx workbook.
func (s *Service) ExportAppointments(ctx context.Context, in ExportInput, w io.Writer) error {
	if !policy.CanViewAnalytics(in.Actor, in.BarbershopID) || in.BarbershopID == 0 {
		return httperr.ErrForbidden("forbidden")
	}

	shop, err := s.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return err
	}

	from, err := timezone.ParseDate(shop.Timezone, in.From)
	if err != nil {
		return httperr.ErrBusiness("invalid_date")
	}
	to, err := timezone.ParseDate(shop.Timezone, in.To)
	if err != nil {
		return httperr.ErrBusiness("invalid_date")
	}
	to = to.AddDate(0, 0, 1)
	if !from.Before(to) || to.Sub(from).Hours() > 24*maxExportDays {
		return httperr.ErrBusiness("invalid_period")
	}

	aps, err := s.repo.ListAppointments(ctx, Scope{
		BarbershopID: shop.ID,
		From:         from,
		To:           to,
	})
	if err != nil {
		return err
	}

	xw, err := newSheetWriter(exportSheet)
	if err != nil {
		return err
	}
	defer xw.Close()

	if err := xw.WriteHeader(exportHeader); err != nil {
		return err
	}

	loc := from.Location()
	for i := range aps {
		if err := xw.WriteRow(exportRow(&aps[i], loc)); err != nil {
			return err
		}
	}

	return xw.Save(w)
}

func exportRow(ap *models.Appointment, loc *time.Location) []any {
	start := ap.StartTime.In(loc)
	return []any{
		ap.ID,
		start.Format(timezone.DateLayout),
		start.Format(timezone.TimeLayout),
		ap.EndTime.In(loc).Format(timezone.TimeLayout),
		ap.Status,
		ap.Customer.Name,
		ap.Customer.Phone,
		ap.Service.Name,
		ap.Staff.Name,
		ap.FinalPrice,
	}
}

// sheetWriter appends rows to a single-sheet workbook.
type sheetWriter struct {
	file  *excelize.File
	sheet string
	row   int
}

func newSheetWriter(sheet string) (*sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	return &sheetWriter{file: f, sheet: sheet, row: 1}, nil
}

func (w *sheetWriter) WriteHeader(cols []any) error {
	if err := w.WriteRow(cols); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	return w.file.SetCellStyle(w.sheet, first, last, style)
}

func (w *sheetWriter) WriteRow(values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

func (w *sheetWriter) Save(out io.Writer) error {
	return w.file.Write(out)
}

func (w *sheetWriter) Close() error {
	return w.file.Close()
}
