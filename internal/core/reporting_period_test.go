package core

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod_Day(t *testing.T) {
	// Mid-afternoon reference still resolves to whole calendar day.
	ref := time.Date(2026, time.March, 17, 15, 42, 0, 0, time.UTC)

	start, end, err := ResolvePeriod(ReportRequest{Kind: PeriodDay, Reference: ref})
	if err != nil {
		t.Fatalf("ResolvePeriod failed: %v", err)
	}
	if !start.Equal(date(2026, time.March, 17)) {
		t.Errorf("Expected start 2026-03-17, got %s", start)
	}
	if !end.Equal(date(2026, time.March, 18)) {
		t.Errorf("Expected end 2026-03-18, got %s", end)
	}
}

func TestResolvePeriod_Week(t *testing.T) {
	// 2026-03-18 is a Wednesday; the week runs Sunday 03-15 through Saturday 03-21.
	start, end, err := ResolvePeriod(ReportRequest{Kind: PeriodWeek, Reference: date(2026, time.March, 18)})
	if err != nil {
		t.Fatalf("ResolvePeriod failed: %v", err)
	}
	if !start.Equal(date(2026, time.March, 15)) {
		t.Errorf("Expected week start Sunday 2026-03-15, got %s", start)
	}
	if !end.Equal(date(2026, time.March, 22)) {
		t.Errorf("Expected week end 2026-03-22, got %s", end)
	}
}

func TestResolvePeriod_WeekOnSunday(t *testing.T) {
	// A Sunday reference starts its own week.
	start, _, err := ResolvePeriod(ReportRequest{Kind: PeriodWeek, Reference: date(2026, time.March, 15)})
	if err != nil {
		t.Fatalf("ResolvePeriod failed: %v", err)
	}
	if !start.Equal(date(2026, time.March, 15)) {
		t.Errorf("Expected week start 2026-03-15 for Sunday reference, got %s", start)
	}
}

func TestResolvePeriod_Month(t *testing.T) {
	start, end, err := ResolvePeriod(ReportRequest{Kind: PeriodMonth, Reference: date(2026, time.February, 14)})
	if err != nil {
		t.Fatalf("ResolvePeriod failed: %v", err)
	}
	if !start.Equal(date(2026, time.February, 1)) {
		t.Errorf("Expected month start 2026-02-01, got %s", start)
	}
	if !end.Equal(date(2026, time.March, 1)) {
		t.Errorf("Expected month end 2026-03-01, got %s", end)
	}
}

func TestResolvePeriod_Year(t *testing.T) {
	start, end, err := ResolvePeriod(ReportRequest{Kind: PeriodYear, Reference: date(2026, time.August, 31)})
	if err != nil {
		t.Fatalf("ResolvePeriod failed: %v", err)
	}
	if !start.Equal(date(2026, time.January, 1)) {
		t.Errorf("Expected year start 2026-01-01, got %s", start)
	}
	if !end.Equal(date(2027, time.January, 1)) {
		t.Errorf("Expected year end 2027-01-01, got %s", end)
	}
}

func TestResolvePeriod_CustomInclusive(t *testing.T) {
	start, end, err := ResolvePeriod(ReportRequest{
		Kind: PeriodCustom,
		From: date(2026, time.March, 1),
		To:   date(2026, time.March, 10),
	})
	if err != nil {
		t.Fatalf("ResolvePeriod failed: %v", err)
	}
	if !start.Equal(date(2026, time.March, 1)) {
		t.Errorf("Expected start 2026-03-01, got %s", start)
	}
	// Inclusive end date: window must cover all of 03-10.
	if !end.Equal(date(2026, time.March, 11)) {
		t.Errorf("Expected end 2026-03-11, got %s", end)
	}
}

func TestResolvePeriod_CustomSingleDay(t *testing.T) {
	d := date(2026, time.March, 5)
	start, end, err := ResolvePeriod(ReportRequest{Kind: PeriodCustom, From: d, To: d})
	if err != nil {
		t.Fatalf("ResolvePeriod failed: %v", err)
	}
	if !start.Equal(d) || !end.Equal(d.AddDate(0, 0, 1)) {
		t.Errorf("Expected [%s, %s), got [%s, %s)", d, d.AddDate(0, 0, 1), start, end)
	}
}

func TestResolvePeriod_Invalid(t *testing.T) {
	cases := []struct {
		name string
		req  ReportRequest
	}{
		{"unknown kind", ReportRequest{Kind: "fortnight", Reference: date(2026, time.March, 1)}},
		{"custom missing dates", ReportRequest{Kind: PeriodCustom}},
		{"custom reversed range", ReportRequest{
			Kind: PeriodCustom,
			From: date(2026, time.March, 10),
			To:   date(2026, time.March, 1),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ResolvePeriod(tc.req)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("Expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}
