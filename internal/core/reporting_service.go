package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PeriodKind selects how a report's date range is derived.
type PeriodKind string

const (
	PeriodDay    PeriodKind = "day"
	PeriodWeek   PeriodKind = "week"
	PeriodMonth  PeriodKind = "month"
	PeriodYear   PeriodKind = "year"
	PeriodCustom PeriodKind = "custom"
)

// ReportRequest selects the reporting window. Reference anchors the named
// periods (day/week/month/year); From and To are used only for custom
// periods and are inclusive calendar dates.
type ReportRequest struct {
	Kind      PeriodKind
	Reference time.Time
	From      time.Time
	To        time.Time
}

// ReportSummary aggregates completed sales over a period. Refunded and
// voided sales are excluded from every figure.
type ReportSummary struct {
	SaleCount     int             `json:"sale_count"`
	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	GST           decimal.Decimal `json:"gst"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Discount      decimal.Decimal `json:"discount"`
	AverageSale   decimal.Decimal `json:"average_sale"`
}

// ProductSales is the per-product breakdown row within a report.
type ProductSales struct {
	ProductID    int             `json:"product_id"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// SalesReport is a full report: the resolved window, the headline summary,
// a per-product breakdown ordered by revenue, and the matching sales
// themselves, newest first.
type SalesReport struct {
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	Summary     ReportSummary  `json:"summary"`
	Products    []ProductSales `json:"products"`
	Sales       []Sale         `json:"sales"`
}

// ReportingService aggregates sales for management reporting. It only reads;
// report figures are always derived from stored sales, never cached.
type ReportingService interface {
	SalesReport(ctx context.Context, req ReportRequest) (*SalesReport, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by PostgreSQL.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

// ResolvePeriod maps a report request to a half-open [start, end) window in
// the reference time's location. Weeks run Sunday through Saturday. Custom
// ranges are inclusive of both endpoint dates.
func ResolvePeriod(req ReportRequest) (time.Time, time.Time, error) {
	ref := req.Reference
	if ref.IsZero() {
		ref = time.Now()
	}
	loc := ref.Location()
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	switch req.Kind {
	case PeriodDay:
		return day, day.AddDate(0, 0, 1), nil
	case PeriodWeek:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 7), nil
	case PeriodMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	case PeriodYear:
		start := time.Date(ref.Year(), 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0), nil
	case PeriodCustom:
		if req.From.IsZero() || req.To.IsZero() {
			return time.Time{}, time.Time{}, &ValidationError{Msg: "custom period requires both from and to dates"}
		}
		from := time.Date(req.From.Year(), req.From.Month(), req.From.Day(), 0, 0, 0, 0, req.From.Location())
		to := time.Date(req.To.Year(), req.To.Month(), req.To.Day(), 0, 0, 0, 0, req.To.Location())
		if to.Before(from) {
			return time.Time{}, time.Time{}, &ValidationError{Msg: "custom period end precedes start"}
		}
		return from, to.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, &ValidationError{Msg: fmt.Sprintf("unknown period kind %q", req.Kind)}
	}
}

func (s *reportingService) SalesReport(ctx context.Context, req ReportRequest) (*SalesReport, error) {
	start, end, err := ResolvePeriod(req)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{PeriodStart: start, PeriodEnd: end}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total), 0),
		       COALESCE(SUM(gst), 0),
		       COALESCE(SUM(service_charge), 0),
		       COALESCE(SUM(discount), 0)
		FROM sales
		WHERE status = 'completed' AND created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&report.Summary.SaleCount, &report.Summary.GrossRevenue, &report.Summary.GST,
		&report.Summary.ServiceCharge, &report.Summary.Discount)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales summary: %w", err)
	}

	if report.Summary.SaleCount > 0 {
		report.Summary.AverageSale = report.Summary.GrossRevenue.
			Div(decimal.NewFromInt(int64(report.Summary.SaleCount))).Round(2)
	} else {
		report.Summary.AverageSale = decimal.Zero
	}

	rows, err := s.pool.Query(ctx, `
		SELECT l.product_id, p.code, p.name,
		       SUM(l.quantity), SUM(l.line_total)
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		JOIN products p ON p.id = l.product_id
		WHERE s.status = 'completed' AND s.created_at >= $1 AND s.created_at < $2
		GROUP BY l.product_id, p.code, p.name
		ORDER BY SUM(l.line_total) DESC, p.code`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate product sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.ProductCode, &ps.ProductName,
			&ps.QuantitySold, &ps.Revenue); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		report.Products = append(report.Products, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product sales: %w", err)
	}

	saleRows, err := s.pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE status = 'completed' AND created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch report sales: %w", err)
	}
	defer saleRows.Close()

	for saleRows.Next() {
		sale, err := scanSale(saleRows)
		if err != nil {
			return nil, fmt.Errorf("scan report sale: %w", err)
		}
		report.Sales = append(report.Sales, *sale)
	}
	return report, saleRows.Err()
}
