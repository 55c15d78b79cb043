package filter

import (
	"testing"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/payment"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func rec(id, first, last string, status payment.Status, offset time.Duration) payment.Payment {
	return payment.Payment{
		ID:               id,
		FirstName:        first,
		LastName:         last,
		ZipCode:          "1000" + id,
		MaskedCardNumber: "**** **** **** 42" + id,
		Status:           status,
		CreatedAt:        base.Add(offset),
	}
}

func names(records []payment.Payment) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.FullName()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply_DefaultSpecKeepsEveryRecord(t *testing.T) {
	records := []payment.Payment{
		rec("1", "Alice", "Smith", payment.StatusProcessed, time.Hour),
		rec("2", "Bob", "Jones", payment.StatusFailed, 3*time.Hour),
		rec("3", "Carol", "White", payment.StatusPending, 2*time.Hour),
	}

	got := Apply(records, DefaultSpec())

	if len(got) != len(records) {
		t.Fatalf("Apply() returned %d records, want %d", len(got), len(records))
	}
	want := []string{"Bob Jones", "Carol White", "Alice Smith"}
	if !equalStrings(names(got), want) {
		t.Errorf("Apply() order = %v, want %v", names(got), want)
	}
}

func TestApply_SearchIsCaseInsensitive(t *testing.T) {
	records := []payment.Payment{
		rec("1", "Jane", "Doe", payment.StatusProcessed, 0),
		rec("2", "John", "Smith", payment.StatusProcessed, time.Hour),
	}

	got := Apply(records, Spec{Search: "jane", Sort: SortDateDesc})

	if !equalStrings(names(got), []string{"Jane Doe"}) {
		t.Errorf("Apply() = %v, want [Jane Doe]", names(got))
	}
}

func TestApply_SearchFields(t *testing.T) {
	p := payment.Payment{
		ID:               "ab12-cd34",
		FirstName:        "Jane",
		LastName:         "Doe",
		ZipCode:          "90210",
		MaskedCardNumber: "**** **** **** 4242",
		CreatedAt:        base,
	}

	tests := []struct {
		name   string
		search string
		match  bool
	}{
		{"full name across the space", "e d", true},
		{"last name", "DOE", true},
		{"identifier", "CD34", true},
		{"masked card", "4242", true},
		{"zip code", "902", true},
		{"no match", "zzz", false},
		{"empty search", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply([]payment.Payment{p}, Spec{Search: tt.search})
			if (len(got) == 1) != tt.match {
				t.Errorf("Apply(search=%q) matched=%v, want %v", tt.search, len(got) == 1, tt.match)
			}
		})
	}
}

func TestApply_StatusFilter(t *testing.T) {
	records := []payment.Payment{
		rec("1", "Alice", "Smith", payment.StatusProcessed, 0),
		rec("2", "Bob", "Jones", payment.StatusFailed, time.Hour),
	}

	got := Apply(records, Spec{Status: payment.StatusFailed, Sort: SortDateDesc})

	if !equalStrings(names(got), []string{"Bob Jones"}) {
		t.Errorf("Apply(status=FAILED) = %v, want [Bob Jones]", names(got))
	}
}

func TestApply_SearchAndStatusCombine(t *testing.T) {
	records := []payment.Payment{
		rec("1", "Ann", "Lee", payment.StatusProcessed, 0),
		rec("2", "Ann", "Park", payment.StatusFailed, time.Hour),
		rec("3", "Ben", "Lee", payment.StatusFailed, 2*time.Hour),
	}

	got := Apply(records, Spec{Search: "ann", Status: payment.StatusFailed})

	if !equalStrings(names(got), []string{"Ann Park"}) {
		t.Errorf("Apply() = %v, want [Ann Park]", names(got))
	}
}

func TestApply_SortByDate(t *testing.T) {
	records := []payment.Payment{
		rec("1", "T", "One", payment.StatusPending, 1*time.Minute),
		rec("2", "T", "Two", payment.StatusPending, 2*time.Minute),
		rec("3", "T", "Three", payment.StatusPending, 3*time.Minute),
	}

	desc := Apply(records, Spec{Sort: SortDateDesc})
	if !equalStrings(names(desc), []string{"T Three", "T Two", "T One"}) {
		t.Errorf("date-desc order = %v", names(desc))
	}

	asc := Apply(records, Spec{Sort: SortDateAsc})
	if !equalStrings(names(asc), []string{"T One", "T Two", "T Three"}) {
		t.Errorf("date-asc order = %v", names(asc))
	}
}

func TestApply_SortByNameIsIdempotent(t *testing.T) {
	records := []payment.Payment{
		rec("1", "charlie", "Brown", payment.StatusPending, 0),
		rec("2", "Alice", "Smith", payment.StatusPending, time.Minute),
		rec("3", "Émile", "Zola", payment.StatusPending, 2*time.Minute),
		rec("4", "bob", "Jones", payment.StatusPending, 3*time.Minute),
	}

	spec := Spec{Sort: SortNameAsc}
	once := Apply(records, spec)
	twice := Apply(once, spec)

	want := []string{"Alice Smith", "bob Jones", "charlie Brown", "Émile Zola"}
	if !equalStrings(names(once), want) {
		t.Errorf("name-asc order = %v, want %v", names(once), want)
	}
	if !equalStrings(names(once), names(twice)) {
		t.Errorf("sorting twice changed order: %v vs %v", names(once), names(twice))
	}

	desc := Apply(records, Spec{Sort: SortNameDesc})
	if desc[0].FullName() != "Émile Zola" {
		t.Errorf("name-desc first = %q, want Émile Zola", desc[0].FullName())
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := []payment.Payment{
		rec("1", "Old", "Record", payment.StatusPending, 0),
		rec("2", "New", "Record", payment.StatusPending, time.Hour),
	}

	_ = Apply(records, DefaultSpec())

	if records[0].ID != "1" || records[1].ID != "2" {
		t.Error("Apply() reordered its input slice")
	}
}

func TestApply_EmptyInput(t *testing.T) {
	got := Apply(nil, Spec{Search: "x", Status: payment.StatusFailed})
	if got == nil || len(got) != 0 {
		t.Errorf("Apply(nil) = %v, want empty non-nil slice", got)
	}
}

func TestSpec_Active(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want bool
	}{
		{"default", DefaultSpec(), false},
		{"sort only", Spec{Sort: SortNameAsc}, false},
		{"search", Spec{Search: "a"}, true},
		{"status", Spec{Status: payment.StatusPending}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		input   string
		want    SortKey
		wantErr bool
	}{
		{"", SortDateDesc, false},
		{"date", SortDateDesc, false},
		{"date-asc", SortDateAsc, false},
		{"name", SortNameAsc, false},
		{"NAME-DESC", SortNameDesc, false},
		{"amount", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSortKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSortKey(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSortKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStatusFilter(t *testing.T) {
	for _, v := range []string{"", "All"} {
		got, err := ParseStatusFilter(v)
		if err != nil || got != "" {
			t.Errorf("ParseStatusFilter(%q) = %q, %v; want no filter", v, got, err)
		}
	}

	got, err := ParseStatusFilter("FAILED")
	if err != nil || got != payment.StatusFailed {
		t.Errorf("ParseStatusFilter(FAILED) = %q, %v", got, err)
	}

	if _, err := ParseStatusFilter("failed"); err == nil {
		t.Error("ParseStatusFilter(failed) should be case-sensitive")
	}
}
