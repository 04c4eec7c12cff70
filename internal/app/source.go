package app

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"retail-pos/internal/core"
)

// ReadSource serves the read-side endpoints the register frontend polls:
// catalog, stock levels, and the sales report. The production source reads
// from the database; the fixture source serves embedded demo data so the
// frontend can run against a backend with no database at all. The source is
// picked once at startup by configuration, never switched at request time.
type ReadSource interface {
	Products(ctx context.Context) ([]core.Product, error)
	StockLevels(ctx context.Context) ([]core.StockLevel, error)
	SalesReport(ctx context.Context, req core.ReportRequest) (*core.SalesReport, error)
}

type remoteSource struct {
	catalog   core.CatalogService
	inventory core.InventoryService
	reporting core.ReportingService
}

// NewRemoteSource builds the production ReadSource over the core services.
func NewRemoteSource(catalog core.CatalogService, inventory core.InventoryService, reporting core.ReportingService) ReadSource {
	return &remoteSource{catalog: catalog, inventory: inventory, reporting: reporting}
}

func (s *remoteSource) Products(ctx context.Context) ([]core.Product, error) {
	return s.catalog.GetProducts(ctx, false)
}

func (s *remoteSource) StockLevels(ctx context.Context) ([]core.StockLevel, error) {
	return s.inventory.GetStockLevels(ctx)
}

func (s *remoteSource) SalesReport(ctx context.Context, req core.ReportRequest) (*core.SalesReport, error) {
	return s.reporting.SalesReport(ctx, req)
}

//go:embed fixtures/demo.json
var demoFixtures []byte

type fixtureData struct {
	Products       []core.Product      `json:"products"`
	StockLevels    []core.StockLevel   `json:"stock_levels"`
	ReportSummary  core.ReportSummary  `json:"report_summary"`
	ReportProducts []core.ProductSales `json:"report_products"`
}

type staticFixtureSource struct {
	data fixtureData
}

// NewStaticFixtureSource builds a ReadSource over the embedded demo data.
func NewStaticFixtureSource() (ReadSource, error) {
	var data fixtureData
	if err := json.Unmarshal(demoFixtures, &data); err != nil {
		return nil, fmt.Errorf("parse demo fixtures: %w", err)
	}
	return &staticFixtureSource{data: data}, nil
}

func (s *staticFixtureSource) Products(ctx context.Context) ([]core.Product, error) {
	return s.data.Products, nil
}

func (s *staticFixtureSource) StockLevels(ctx context.Context) ([]core.StockLevel, error) {
	return s.data.StockLevels, nil
}

// SalesReport resolves the requested window for real, then fills it with the
// canned figures. Period validation behaves identically to production.
func (s *staticFixtureSource) SalesReport(ctx context.Context, req core.ReportRequest) (*core.SalesReport, error) {
	start, end, err := core.ResolvePeriod(req)
	if err != nil {
		return nil, err
	}
	return &core.SalesReport{
		PeriodStart: start,
		PeriodEnd:   end,
		Summary:     s.ReportSummary(),
		Products:    s.data.ReportProducts,
	}, nil
}

func (s *staticFixtureSource) ReportSummary() core.ReportSummary {
	return s.data.ReportSummary
}

// SelectReadSource picks the configured source: POS_DATA_SOURCE=fixture
// serves the embedded demo data, anything else serves the database.
func SelectReadSource(remote ReadSource) (ReadSource, error) {
	if os.Getenv("POS_DATA_SOURCE") == "fixture" {
		return NewStaticFixtureSource()
	}
	return remote, nil
}
