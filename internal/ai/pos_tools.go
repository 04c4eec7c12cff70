package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"retail-pos/internal/core"
)

type salesReportParams struct {
	Period string `json:"period" jsonschema:"enum=day,enum=week,enum=month,enum=year,enum=custom,description=Reporting period"`
	From   string `json:"from,omitempty" jsonschema:"description=Start date YYYY-MM-DD; custom period only"`
	To     string `json:"to,omitempty" jsonschema:"description=End date YYYY-MM-DD inclusive; custom period only"`
}

type listProductsParams struct {
	IncludeInactive bool `json:"include_inactive,omitempty" jsonschema:"description=Include deactivated products"`
}

type emptyParams struct{}

// NewPOSRegistry builds the assistant's read-tool registry over the core
// services. Every tool is read-only; the assistant cannot sell, adjust, or
// receive anything.
func NewPOSRegistry(reporting core.ReportingService, inventory core.InventoryService, catalog core.CatalogService) *ToolRegistry {
	registry := NewToolRegistry()

	registry.Register(ToolDefinition{
		Name:        "get_sales_report",
		Description: "Aggregated sales for a period: sale count, revenue, GST, service charge, discounts, average sale, and per-product breakdown. Excludes refunded and voided sales.",
		InputSchema: schemaFor(salesReportParams{}),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			var p salesReportParams
			if err := decodeParams(params, &p); err != nil {
				return "", err
			}
			req := core.ReportRequest{Kind: core.PeriodKind(p.Period), Reference: time.Now()}
			if p.From != "" {
				from, err := time.Parse("2006-01-02", p.From)
				if err != nil {
					return "", fmt.Errorf("parse from date: %w", err)
				}
				req.From = from
			}
			if p.To != "" {
				to, err := time.Parse("2006-01-02", p.To)
				if err != nil {
					return "", fmt.Errorf("parse to date: %w", err)
				}
				req.To = to
			}
			report, err := reporting.SalesReport(ctx, req)
			if err != nil {
				return "", err
			}
			return encodeResult(report)
		},
	})

	registry.Register(ToolDefinition{
		Name:        "get_stock_levels",
		Description: "Current stock on hand and stock value for every active product.",
		InputSchema: schemaFor(emptyParams{}),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			levels, err := inventory.GetStockLevels(ctx)
			if err != nil {
				return "", err
			}
			return encodeResult(levels)
		},
	})

	registry.Register(ToolDefinition{
		Name:        "list_products",
		Description: "Catalog products with prices, cost prices, and categories.",
		InputSchema: schemaFor(listProductsParams{}),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			var p listProductsParams
			if err := decodeParams(params, &p); err != nil {
				return "", err
			}
			products, err := catalog.GetProducts(ctx, p.IncludeInactive)
			if err != nil {
				return "", err
			}
			return encodeResult(products)
		},
	})

	return registry
}

func decodeArguments(raw string, dst *map[string]any) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode tool arguments: %w", err)
	}
	return nil
}

func decodeParams(params map[string]any, dst any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode tool params: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode tool params: %w", err)
	}
	return nil
}

func encodeResult(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(raw), nil
}
