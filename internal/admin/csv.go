// Package admin holds the back-office bulk tools: product CSV import and
// product/order CSV export.
package admin

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"teakspice-storefront/internal/client"
	"teakspice-storefront/internal/models"
)

var requiredHeaders = []string{"name", "price", "description", "stockquantity", "categoryname"}

const optionalImageHeader = "image"

// ErrMissingHeaders is returned when the header row lacks a required column.
var ErrMissingHeaders = errors.New("csv is missing required headers")

type API interface {
	Categories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, in client.ProductInput) (models.Product, error)
}

// Row is one validated data line of an import file.
type Row struct {
	Line          int
	Name          string  `validate:"required"`
	Price         float64 `validate:"gte=0"`
	Description   string
	StockQuantity int    `validate:"gte=0"`
	CategoryName  string `validate:"required"`
	Image         string
}

type RowError struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Report summarizes an import. Rows created before a failure stay created.
type Report struct {
	Created    int            `json:"created"`
	ByCategory map[string]int `json:"byCategory"`
	Skipped    []RowError     `json:"skipped"`
	Failed     []RowError     `json:"failed"`
}

type Importer struct {
	api      API
	logger   *slog.Logger
	validate *validator.Validate
}

func NewImporter(api API, logger *slog.Logger) *Importer {
	return &Importer{api: api, logger: logger, validate: validator.New()}
}

// Import reads a product CSV and creates one product per valid row whose
// categoryName matches an existing category, ignoring case. Other rows are
// skipped and logged.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	report := Report{ByCategory: map[string]int{}}

	categories, err := im.api.Categories(ctx)
	if err != nil {
		return report, fmt.Errorf("load categories: %w", err)
	}
	byName := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byName[strings.ToLower(strings.TrimSpace(c.Name))] = c
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return report, ErrMissingHeaders
	}
	if err != nil {
		return report, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return report, err
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// the reader resumes at the next record
			im.skip(&report, RowError{Line: parseErr.StartLine, Name: recordName(record, cols), Reason: parseErr.Err.Error()})
			continue
		}
		if err != nil {
			return report, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(record) {
			continue
		}

		row, err := im.parseRow(record, cols, line)
		if err != nil {
			im.skip(&report, RowError{Line: line, Name: row.Name, Reason: err.Error()})
			continue
		}
		category, ok := byName[strings.ToLower(row.CategoryName)]
		if !ok {
			im.skip(&report, RowError{Line: line, Name: row.Name, Reason: "unknown category " + strconv.Quote(row.CategoryName)})
			continue
		}

		in := client.ProductInput{
			Name:          row.Name,
			Price:         row.Price,
			Description:   row.Description,
			StockQuantity: row.StockQuantity,
			CategoryID:    category.ID.Hex(),
		}
		if row.Image != "" {
			in.Images = []models.Image{{URL: row.Image, IsMain: true}}
		}
		if _, err := im.api.CreateProduct(ctx, in); err != nil {
			im.logger.Warn("import row failed", slog.Int("line", line), slog.String("name", row.Name), slog.String("error", err.Error()))
			report.Failed = append(report.Failed, RowError{Line: line, Name: row.Name, Reason: err.Error()})
			continue
		}
		report.Created++
		report.ByCategory[category.Name]++
	}

	im.logger.Info("import finished",
		slog.Int("created", report.Created),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("failed", len(report.Failed)))
	return report, nil
}

func (im *Importer) skip(report *Report, e RowError) {
	im.logger.Warn("import row skipped", slog.Int("line", e.Line), slog.String("name", e.Name), slog.String("reason", e.Reason))
	report.Skipped = append(report.Skipped, e)
}

// columnIndex maps lower-cased header names to their column.
func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := cols[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (im *Importer) parseRow(record []string, cols map[string]int, line int) (Row, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := Row{
		Line:         line,
		Name:         field("name"),
		Description:  field("description"),
		CategoryName: field("categoryname"),
		Image:        field(optionalImageHeader),
	}

	var err error
	if row.Price, err = strconv.ParseFloat(field("price"), 64); err != nil {
		return row, fmt.Errorf("invalid price %q", field("price"))
	}
	if row.StockQuantity, err = strconv.Atoi(field("stockquantity")); err != nil {
		return row, fmt.Errorf("invalid stockQuantity %q", field("stockquantity"))
	}
	if err := im.validate.Struct(row); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			return row, fmt.Errorf("%s failed %s", vErrs[0].Field(), vErrs[0].Tag())
		}
		return row, err
	}
	return row, nil
}

func recordName(record []string, cols map[string]int) string {
	if i := cols["name"]; i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ExportProducts writes products in the import format, so an export can be
// edited and imported again.
func ExportProducts(w io.Writer, products []models.Product, categories []models.Category) error {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID.Hex()] = c.Name
	}

	cw := csv.NewWriter(w)
	cw.Write([]string{"name", "price", "description", "stockQuantity", "categoryName", "image"})
	for _, p := range products {
		cw.Write([]string{
			p.Name,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			p.Description,
			strconv.Itoa(p.StockQuantity),
			names[p.CategoryID.Hex()],
			p.MainImage(),
		})
	}
	cw.Flush()
	return cw.Error()
}

func ExportOrders(w io.Writer, orders []models.Order) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"reference", "date", "customerName", "customerPhone", "status", "paymentMethod", "items", "total"})
	for _, o := range orders {
		units := 0
		for _, it := range o.Items {
			units += it.Quantity
		}
		cw.Write([]string{
			o.Reference,
			o.CreatedAt.UTC().Format(time.RFC3339),
			o.CustomerName,
			o.CustomerPhone,
			string(o.Status),
			string(o.PaymentMethod),
			strconv.Itoa(units),
			strconv.FormatFloat(o.Total, 'f', 2, 64),
		})
	}
	cw.Flush()
	return cw.Error()
}
