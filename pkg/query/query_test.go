package query_test

import (
	"testing"

	"github.com/vantagesource/qualis/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "suppliers", "s").
		Project("id", "id").
		Project("name", "name").
		Project("created_at", "createdAt")
}

func ptr(s string) *string { return &s }

func TestProjectionMapFrom(t *testing.T) {
	p := testProjection()
	got := p.From()
	want := "public.suppliers s"
	if got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
}

func TestProjectionMapAlias(t *testing.T) {
	p := testProjection()
	if got := p.Alias(); got != "s" {
		t.Errorf("Alias() = %q, want %q", got, "s")
	}
}

func TestProjectionMapColumns(t *testing.T) {
	p := testProjection()
	got := p.Columns()
	want := "s.id, s.name, s.created_at"
	if got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"mapped field", "name", "s.name"},
		{"mapped camel", "createdAt", "s.created_at"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).Build()
	want := "SELECT s.id, s.name, s.created_at FROM public.suppliers s"
	if sql != want {
		t.Errorf("Build() = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("Build() args = %v, want none", args)
	}
}

func TestBuilderBuildCount(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).
		WhereContains("name", ptr("acme")).
		BuildCount()

	want := "SELECT COUNT(*) FROM public.suppliers s WHERE s.name ILIKE $1"
	if sql != want {
		t.Errorf("BuildCount() = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "%acme%" {
		t.Errorf("BuildCount() args = %v, want [%%acme%%]", args)
	}
}

func TestBuilderBuildPage(t *testing.T) {
	sql, args := query.NewBuilder(
		testProjection(),
		query.SortField{Field: "createdAt", Descending: true},
	).
		WhereEquals("name", "acme").
		BuildPage(2, 25)

	want := "SELECT s.id, s.name, s.created_at FROM public.suppliers s" +
		" WHERE s.name = $1 ORDER BY s.created_at DESC LIMIT 25 OFFSET 25"
	if sql != want {
		t.Errorf("BuildPage() = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "acme" {
		t.Errorf("BuildPage() args = %v, want [acme]", args)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("id", "abc-123")

	want := "SELECT s.id, s.name, s.created_at FROM public.suppliers s WHERE s.id = $1"
	if sql != want {
		t.Errorf("BuildSingle() = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "abc-123" {
		t.Errorf("BuildSingle() args = %v, want [abc-123]", args)
	}
}

func TestBuilderBuildSingleOrNull(t *testing.T) {
	sql, _ := query.NewBuilder(
		testProjection(),
		query.SortField{Field: "createdAt", Descending: true},
	).
		WhereEquals("name", "acme").
		BuildSingleOrNull()

	want := "SELECT s.id, s.name, s.created_at FROM public.suppliers s" +
		" WHERE s.name = $1 LIMIT 1"
	if sql != want {
		t.Errorf("BuildSingleOrNull() = %q, want %q", sql, want)
	}
}

func TestBuilderSkipsEmptyConditions(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).
		WhereContains("name", nil).
		WhereEquals("id", (*string)(nil)).
		WhereSearch(nil, "name").
		Build()

	want := "SELECT s.id, s.name, s.created_at FROM public.suppliers s"
	if sql != want {
		t.Errorf("Build() = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty string", "", nil},
		{"single ascending", "name", []query.SortField{{Field: "name"}}},
		{"single descending", "-createdAt", []query.SortField{{Field: "createdAt", Descending: true}}},
		{
			"multiple mixed", "name,-createdAt",
			[]query.SortField{
				{Field: "name"},
				{Field: "createdAt", Descending: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %+v, want %+v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
