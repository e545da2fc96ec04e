package dates

import "testing"

func TestAddDays(t *testing.T) {
	tests := []struct {
		name string
		date string
		n    int
		want string
	}{
		{"same month", "2024-01-10", 5, "2024-01-15"},
		{"month boundary", "2024-01-29", 6, "2024-02-04"},
		{"leap year february", "2024-02-26", 6, "2024-03-03"},
		{"non-leap february", "2023-02-26", 6, "2023-03-04"},
		{"year boundary", "2023-12-29", 6, "2024-01-04"},
		{"century non-leap", "1900-02-26", 6, "1900-03-04"},
		{"quad-century leap", "2000-02-26", 6, "2000-03-03"},
		{"zero days", "2024-06-15", 0, "2024-06-15"},
		{"negative within month", "2024-03-15", -14, "2024-03-01"},
		{"negative across month", "2024-03-10", -14, "2024-02-25"},
		{"negative across year", "2024-01-05", -14, "2023-12-22"},
		{"negative into leap day", "2024-03-01", -1, "2024-02-29"},
		{"large span", "2024-01-01", 365, "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddDays(tt.date, tt.n)
			if err != nil {
				t.Fatalf("AddDays(%q, %d): %v", tt.date, tt.n, err)
			}
			if got != tt.want {
				t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.n, got, tt.want)
			}
		})
	}
}

func TestAddDaysInvalid(t *testing.T) {
	for _, date := range []string{"", "2024-1-5", "20240105", "2024-13-01", "2024-02-30", "not-a-date"} {
		if _, err := AddDays(date, 1); err == nil {
			t.Errorf("AddDays(%q, 1): expected error", date)
		}
	}
}

func TestWeekRange(t *testing.T) {
	start, end, err := WeekRange("2024-01-29")
	if err != nil {
		t.Fatalf("week range: %v", err)
	}
	if start != "2024-01-29" || end != "2024-02-04" {
		t.Errorf("WeekRange = [%s, %s], want [2024-01-29, 2024-02-04]", start, end)
	}
}

func TestValid(t *testing.T) {
	valid := []string{"2024-02-29", "1999-12-31", "2023-01-01"}
	for _, d := range valid {
		if !Valid(d) {
			t.Errorf("Valid(%q) = false, want true", d)
		}
	}
	invalid := []string{"2023-02-29", "2024-00-10", "2024-06-31", "24-06-01"}
	for _, d := range invalid {
		if Valid(d) {
			t.Errorf("Valid(%q) = true, want false", d)
		}
	}
}
