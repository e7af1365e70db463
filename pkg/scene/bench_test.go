package scene

import (
	"testing"

	"github.com/ChicagoDave/citadel/pkg/config"
)

// BenchmarkGenerate runs the full pipeline on the reference settlement.
func BenchmarkGenerate(b *testing.B) {
	s := config.Default()
	for i := 0; i < b.N; i++ {
		if _, err := Generate(s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidateGraph(b *testing.B) {
	g, err := Generate(config.Default())
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ValidateGraph(g)
	}
}

func TestDefaultSettlementScale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full settlement in short mode")
	}
	g, err := Generate(config.Default())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	r := ValidateGraph(g)
	if !r.Valid {
		t.Fatalf("default settlement invalid: %+v", r.Errors)
	}
	t.Logf("default settlement: %d entities, %d buildings, %s", len(g.Entities), g.Metadata.Buildings, r.Summary)
}
