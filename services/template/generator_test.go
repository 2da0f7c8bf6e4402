package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sbatch_template")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}
	return path
}

// TestNewGenerator_MissingFile tests that a missing template fails construction.
func TestNewGenerator_MissingFile(t *testing.T) {
	if _, err := NewGenerator(""); err == nil {
		t.Error("Expected error for empty path")
	}
	if _, err := NewGenerator("/nonexistent/template"); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestPlaceholders_Distinct tests that repeated placeholders are reported once.
func TestPlaceholders_Distinct(t *testing.T) {
	gen, err := NewGenerator(writeTemplate(t, "train {model_name} into {model_path}/{model_name}"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	placeholders := gen.Placeholders()
	if len(placeholders) != 2 {
		t.Fatalf("Expected 2 distinct placeholders, got %v", placeholders)
	}
}

// TestRender_SubstitutesAll tests substitution of every occurrence.
func TestRender_SubstitutesAll(t *testing.T) {
	gen, err := NewGenerator(writeTemplate(t, "#SBATCH --job-name=train_{model_name}\nout={model_path}/{model_name}"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rendered, err := gen.Render(map[string]string{
		"model_name": "unet",
		"model_path": "/models",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := "#SBATCH --job-name=train_unet\nout=/models/unet"
	if rendered != want {
		t.Errorf("Expected %q, got %q", want, rendered)
	}
}

// TestRender_MissingVariables tests the sorted missing-variable error.
func TestRender_MissingVariables(t *testing.T) {
	gen, err := NewGenerator(writeTemplate(t, "{zeta} {alpha} {mid}"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = gen.Render(map[string]string{"mid": "x"})
	if err == nil {
		t.Fatal("Expected error for missing variables")
	}
	if !strings.Contains(err.Error(), "[alpha zeta]") {
		t.Errorf("Expected sorted missing list, got %v", err)
	}
}

// TestRender_ExtraVariablesIgnored tests that surplus variables are harmless.
func TestRender_ExtraVariablesIgnored(t *testing.T) {
	gen, err := NewGenerator(writeTemplate(t, "run {model_name}"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rendered, err := gen.Render(map[string]string{
		"model_name": "unet",
		"unused":     "whatever",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rendered != "run unet" {
		t.Errorf("Expected %q, got %q", "run unet", rendered)
	}
}

// TestRender_Deterministic tests that equal inputs render identically.
func TestRender_Deterministic(t *testing.T) {
	gen, err := NewGenerator(writeTemplate(t, "{a}-{b}-{a}"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	vars := map[string]string{"a": "1", "b": "2"}
	first, err := gen.Render(vars)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := gen.Render(vars)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("Expected deterministic rendering, got %q then %q", first, second)
	}
}
