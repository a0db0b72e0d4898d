package model

import "testing"

func TestListOptions_Clamp(t *testing.T) {
	tests := []struct {
		name       string
		input      ListOptions
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ListOptions{Limit: 0, Offset: 0}, 20, 0},
		{"negative limit", ListOptions{Limit: -5, Offset: 0}, 20, 0},
		{"over max", ListOptions{Limit: 200, Offset: 0}, 100, 0},
		{"negative offset", ListOptions{Limit: 10, Offset: -3}, 10, 0},
		{"valid", ListOptions{Limit: 50, Offset: 10}, 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Clamp()
			if tt.input.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.input.Limit, tt.wantLimit)
			}
			if tt.input.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", tt.input.Offset, tt.wantOffset)
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(45, ListOptions{Limit: 20, Offset: 20})
	if !pg.HasMore {
		t.Error("HasMore = false, want true for page 2 of 3")
	}
	pg = NewPagination(45, ListOptions{Limit: 20, Offset: 40})
	if pg.HasMore {
		t.Error("HasMore = true, want false for last page")
	}
	if pg.Total != 45 || pg.Limit != 20 || pg.Offset != 40 {
		t.Errorf("pagination = %+v", pg)
	}
}

func TestTask_RelativeDeadline(t *testing.T) {
	implicit := Task{Name: "A", ComputingTime: 1, Period: 4}
	if got := implicit.RelativeDeadline(); got != 4 {
		t.Errorf("implicit RelativeDeadline() = %d, want 4", got)
	}
	constrained := Task{Name: "B", ComputingTime: 1, Period: 10, Deadline: 6}
	if got := constrained.RelativeDeadline(); got != 6 {
		t.Errorf("constrained RelativeDeadline() = %d, want 6", got)
	}
}

func TestTaskSet_Bounds(t *testing.T) {
	ts := TaskSet{
		{Name: "A", ComputingTime: 1, Period: 4},
		{Name: "B", ComputingTime: 3, Period: 5},
		{Name: "C", ComputingTime: 2, Period: 20, Deadline: 15},
	}
	if got := ts.MaxComputingTime(); got != 3 {
		t.Errorf("MaxComputingTime() = %d, want 3", got)
	}
	if got := ts.MinPeriod(); got != 4 {
		t.Errorf("MinPeriod() = %d, want 4", got)
	}
	if ts.ImplicitDeadlines() {
		t.Error("ImplicitDeadlines() = true, want false")
	}
	if (TaskSet{}).MinPeriod() != 0 {
		t.Error("MinPeriod() of empty set should be 0")
	}
}

func TestTaskSet_CloneIsIndependent(t *testing.T) {
	ts := TaskSet{{Name: "A", ComputingTime: 1, Period: 4}, {Name: "B", ComputingTime: 1, Period: 2}}
	c := ts.Clone()
	c[0], c[1] = c[1], c[0]
	if ts[0].Name != "A" {
		t.Errorf("original reordered: ts[0] = %q", ts[0].Name)
	}
}

func TestParseDiscipline(t *testing.T) {
	for _, d := range Disciplines {
		got, ok := ParseDiscipline(string(d))
		if !ok || got != d {
			t.Errorf("ParseDiscipline(%q) = %q, %v", d, got, ok)
		}
	}
	if _, ok := ParseDiscipline("fifo"); ok {
		t.Error("ParseDiscipline(fifo) should fail")
	}
}

func TestVerdict_IsConclusive(t *testing.T) {
	tests := []struct {
		v    Verdict
		want bool
	}{
		{VerdictSchedulable, true},
		{VerdictUnschedulable, true},
		{VerdictCannotGuarantee, false},
	}
	for _, tt := range tests {
		if got := tt.v.IsConclusive(); got != tt.want {
			t.Errorf("Verdict(%q).IsConclusive() = %v, want %v", tt.v, got, tt.want)
		}
	}
}
