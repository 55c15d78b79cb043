package pagination

import (
	"strings"
	"testing"
)

func stripString(items []PageItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " ")
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    string
	}{
		{"no pages", 1, 0, ""},
		{"single page", 1, 1, "1"},
		{"five pages", 3, 5, "1 2 3 4 5"},
		{"five pages last", 5, 5, "1 2 3 4 5"},
		{"first of ten", 1, 10, "1 2 ... 10"},
		{"second of ten", 2, 10, "1 2 3 ... 10"},
		{"third of ten", 3, 10, "1 2 3 4 ... 10"},
		{"fourth of ten", 4, 10, "1 ... 3 4 5 ... 10"},
		{"middle of ten", 5, 10, "1 ... 4 5 6 ... 10"},
		{"eighth of ten", 8, 10, "1 ... 7 8 9 10"},
		{"ninth of ten", 9, 10, "1 ... 8 9 10"},
		{"last of ten", 10, 10, "1 ... 9 10"},
		{"six pages middle", 3, 6, "1 2 3 4 ... 6"},
		{"current below range", 0, 10, "1 2 ... 10"},
		{"current above range", 12, 10, "1 ... 9 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripString(PageNumbers(tt.current, tt.total))
			if got != tt.want {
				t.Errorf("PageNumbers(%d, %d) = %q, want %q", tt.current, tt.total, got, tt.want)
			}
		})
	}
}

func TestPageNumbersInvariants(t *testing.T) {
	for total := 6; total <= 40; total++ {
		for current := 1; current <= total; current++ {
			items := PageNumbers(current, total)

			if items[0].Number != 1 {
				t.Fatalf("PageNumbers(%d, %d) first = %v, want 1", current, total, items[0])
			}
			if last := items[len(items)-1]; last.Number != total {
				t.Fatalf("PageNumbers(%d, %d) last = %v, want %d", current, total, last, total)
			}
			if len(items) > maxVisiblePages+2 {
				t.Fatalf("PageNumbers(%d, %d) has %d items, want <= %d", current, total, len(items), maxVisiblePages+2)
			}

			seenCurrent := false
			prev := 0
			for i, it := range items {
				if it.Ellipsis {
					if i > 0 && items[i-1].Ellipsis {
						t.Fatalf("PageNumbers(%d, %d) has adjacent ellipses", current, total)
					}
					continue
				}
				if it.Number <= prev {
					t.Fatalf("PageNumbers(%d, %d) not ascending: %s", current, total, stripString(items))
				}
				if i > 0 && !items[i-1].Ellipsis && it.Number != prev+1 {
					t.Fatalf("PageNumbers(%d, %d) gap without ellipsis: %s", current, total, stripString(items))
				}
				if it.Number == current {
					seenCurrent = true
				}
				prev = it.Number
			}
			if !seenCurrent {
				t.Fatalf("PageNumbers(%d, %d) missing current page: %s", current, total, stripString(items))
			}
		}
	}
}

func TestPageItemString(t *testing.T) {
	if got := (PageItem{Number: 7}).String(); got != "7" {
		t.Errorf("PageItem{7}.String() = %q, want %q", got, "7")
	}
	if got := (PageItem{Ellipsis: true}).String(); got != "..." {
		t.Errorf("PageItem{Ellipsis}.String() = %q, want %q", got, "...")
	}
}
