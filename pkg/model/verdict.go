package model

// Verdict is the outcome of a schedulability analysis.
type Verdict string

const (
	VerdictSchedulable     Verdict = "SCHEDULABLE"
	VerdictUnschedulable   Verdict = "UNSCHEDULABLE"
	VerdictCannotGuarantee Verdict = "CANNOT_GUARANTEE"
)

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	return string(v)
}

// IsConclusive returns true if the verdict proves or disproves schedulability.
func (v Verdict) IsConclusive() bool {
	switch v {
	case VerdictSchedulable, VerdictUnschedulable:
		return true
	}
	return false
}

// Discipline identifies a scheduling discipline.
type Discipline string

const (
	DisciplineCyclic            Discipline = "cyclic"
	DisciplineEDF               Discipline = "edf"
	DisciplineRateMonotonic     Discipline = "rm"
	DisciplineDeadlineMonotonic Discipline = "dm"
)

// Disciplines lists every supported discipline.
var Disciplines = []Discipline{
	DisciplineCyclic,
	DisciplineEDF,
	DisciplineRateMonotonic,
	DisciplineDeadlineMonotonic,
}

// ParseDiscipline returns the discipline named s and whether it is known.
func ParseDiscipline(s string) (Discipline, bool) {
	for _, d := range Disciplines {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}
