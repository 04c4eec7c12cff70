package ai

import "testing"

func TestPOSRegistryToolNames(t *testing.T) {
	registry := NewPOSRegistry(nil, nil, nil)

	want := []string{"get_sales_report", "get_stock_levels", "list_products"}
	if got := len(registry.All()); got != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), got)
	}
	for _, name := range want {
		tool, ok := registry.Get(name)
		if !ok {
			t.Fatalf("tool %q not registered", name)
		}
		if tool.Handler == nil {
			t.Errorf("tool %q has no handler", name)
		}
		if tool.Description == "" {
			t.Errorf("tool %q has no description", name)
		}
		if typ, _ := tool.InputSchema["type"].(string); typ != "object" {
			t.Errorf("tool %q schema type = %q, want object", name, typ)
		}
	}

	if _, ok := registry.Get("adjust_stock"); ok {
		t.Error("registry should not expose write tools")
	}
}

func TestToOpenAIToolsCarriesSchemas(t *testing.T) {
	registry := NewPOSRegistry(nil, nil, nil)

	params := registry.ToOpenAITools()
	if len(params) != len(registry.All()) {
		t.Fatalf("expected %d tool params, got %d", len(registry.All()), len(params))
	}
	for _, p := range params {
		if p.OfFunction == nil {
			t.Fatal("tool param missing function definition")
		}
		if p.OfFunction.Name == "" {
			t.Error("function tool has no name")
		}
		if p.OfFunction.Parameters == nil {
			t.Errorf("function tool %q has no parameters schema", p.OfFunction.Name)
		}
	}
}

func TestSalesReportSchemaListsPeriods(t *testing.T) {
	schema := schemaFor(salesReportParams{})
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatal("schema has no properties")
	}
	period, ok := props["period"].(map[string]any)
	if !ok {
		t.Fatal("schema has no period property")
	}
	enum, ok := period["enum"].([]any)
	if !ok || len(enum) != 5 {
		t.Fatalf("period enum = %v, want 5 values", period["enum"])
	}
}
