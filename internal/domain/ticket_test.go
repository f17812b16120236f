package domain

import (
	"reflect"
	"testing"
)

func TestIsForwardTransition(t *testing.T) {
	cases := []struct {
		current, next TicketStatus
		want          bool
	}{
		{TicketStatusCreated, TicketStatusTriaging, true},
		{TicketStatusTriaging, TicketStatusClassified, true},
		{TicketStatusClassified, TicketStatusAssigned, true},
		{TicketStatusCreated, TicketStatusAssigned, true},
		{TicketStatusTriaging, TicketStatusTriaging, true},
		{TicketStatusAssigned, TicketStatusCreated, false},
		{TicketStatusClassified, TicketStatusTriaging, false},
		{TicketStatus("bogus"), TicketStatusAssigned, false},
		{TicketStatusCreated, TicketStatus("bogus"), false},
	}
	for _, tc := range cases {
		if got := IsForwardTransition(tc.current, tc.next); got != tc.want {
			t.Errorf("IsForwardTransition(%s, %s) = %v, want %v", tc.current, tc.next, got, tc.want)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := []struct {
		raw  string
		want TicketPriority
	}{
		{"low", TicketPriorityLow},
		{"medium", TicketPriorityMedium},
		{"high", TicketPriorityHigh},
		{"critical", TicketPriorityCritical},
		{"HIGH", TicketPriorityHigh},
		{"  Low  ", TicketPriorityLow},
		{"urgent", TicketPriorityMedium},
		{"p1", TicketPriorityMedium},
		{"", TicketPriorityMedium},
	}
	for _, tc := range cases {
		if got := NormalizePriority(tc.raw); got != tc.want {
			t.Errorf("NormalizePriority(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeSkills(t *testing.T) {
	got := NormalizeSkills([]string{" Auth ", "", "  ", "BILLING", "networking"})
	want := []string{"auth", "billing", "networking"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeSkills = %v, want %v", got, want)
	}

	if got := NormalizeSkills(nil); len(got) != 0 {
		t.Errorf("NormalizeSkills(nil) = %v, want empty", got)
	}
}

func TestSkillsIntersect(t *testing.T) {
	cases := []struct {
		name          string
		ticket, staff []string
		want          bool
	}{
		{"exact match", []string{"auth"}, []string{"auth"}, true},
		{"case insensitive", []string{"AUTH"}, []string{"Auth", "billing"}, true},
		{"no overlap", []string{"auth"}, []string{"billing"}, false},
		{"empty ticket skills", nil, []string{"auth"}, false},
		{"empty staff skills", []string{"auth"}, nil, false},
		{"whitespace tolerated", []string{" auth "}, []string{"auth"}, true},
	}
	for _, tc := range cases {
		if got := SkillsIntersect(tc.ticket, tc.staff); got != tc.want {
			t.Errorf("%s: SkillsIntersect(%v, %v) = %v, want %v", tc.name, tc.ticket, tc.staff, got, tc.want)
		}
	}
}
