package fields

// Section labels the semantic type of an extracted Record
type Section string

// The fixed set of sections a Record may carry
const (
	SectionName          Section = "Name"
	SectionDateOfBirth   Section = "Date of Birth"
	SectionEmail         Section = "Email"
	SectionSkill         Section = "Skill"
	SectionProject       Section = "Project"
	SectionCertification Section = "Certification"
	SectionPhone         Section = "Phone"
	SectionAddress       Section = "Address"
	SectionDate          Section = "Date"
	SectionAmount        Section = "Amount"
)

// Sections lists every valid section in declaration order
func Sections() []Section {
	return []Section{
		SectionName, SectionDateOfBirth, SectionEmail, SectionSkill, SectionProject,
		SectionCertification, SectionPhone, SectionAddress, SectionDate, SectionAmount,
	}
}

// Valid reports whether s is one of the fixed sections
func (s Section) Valid() bool {
	for _, known := range Sections() {
		if s == known {
			return true
		}
	}
	return false
}

// Record is one labeled extraction
type Record struct {
	Section Section `json:"section"`
	Detail  string  `json:"detail"`
}

// Accumulator collects records for a single processing run in insertion order.
// It is not safe for concurrent use; each run owns its own instance.
type Accumulator struct {
	records []Record
}

// NewAccumulator returns an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends a record
func (a *Accumulator) Add(section Section, detail string) {
	a.records = append(a.records, Record{Section: section, Detail: detail})
}

// Append appends already built records, keeping their order
func (a *Accumulator) Append(records ...Record) {
	a.records = append(a.records, records...)
}

// Len returns the number of collected records
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Records returns a copy of the collected records
func (a *Accumulator) Records() []Record {
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}
