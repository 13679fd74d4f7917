package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/match"
)

func result(name, category string, score float64) match.Result {
	return match.Result{
		Entry: catalogue.Entry{Name: name, Category: category, Summary: name + " summary"},
		Score: score,
	}
}

func TestGroupByCategory_Order(t *testing.T) {
	results := []match.Result{
		result("tutorials", catalogue.CategoryTraining, 6),
		result("zz-tool", "", 5),
		result("cfr", catalogue.CategoryRPackage, 4),
		result("app", catalogue.CategoryApplication, 3),
		result("epichains", catalogue.CategoryRPackage, 2),
	}
	order, grouped := groupByCategory(results)

	want := []string{catalogue.CategoryRPackage, catalogue.CategoryApplication, catalogue.CategoryTraining, catalogue.CategoryUnknown}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", order, want)
	}
	pkgs := grouped[catalogue.CategoryRPackage]
	if len(pkgs) != 2 || pkgs[0].Entry.Name != "cfr" || pkgs[1].Entry.Name != "epichains" {
		t.Fatalf("rank order not kept inside group: %+v", pkgs)
	}
}

func TestPrintFindResults(t *testing.T) {
	var buf bytes.Buffer
	r := result("cfr", catalogue.CategoryRPackage, 10)
	r.Matched = []string{"tag:case", "summary:estimate"}
	printFindResults(&buf, "estimate cfr", []match.Result{r})

	out := buf.String()
	for _, want := range []string{`epiagent find "estimate cfr"`, "Results (1 found):", "r_package (1):", "[10]", "cfr", "matched: tag:case, summary:estimate"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintFindResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	printFindResults(&buf, "nothing", nil)
	if !strings.Contains(buf.String(), "Results (0 found):") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
