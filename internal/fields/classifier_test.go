package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_ClassifyLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []Record
	}{
		{
			name: "skill line with a date is additive",
			line: "Skill: Python and JavaScript, certified 01/01/2020",
			want: []Record{
				{Section: SectionSkill, Detail: "Skill: Python and JavaScript, certified 01/01/2020"},
				{Section: SectionDate, Detail: "01/01/2020"},
			},
		},
		{
			name: "name label and name pattern both fire",
			line: "Name: John Smith",
			want: []Record{
				{Section: SectionName, Detail: "John Smith"},
				{Section: SectionName, Detail: "John Smith"},
			},
		},
		{
			name: "date of birth label",
			line: "Date of Birth: 05/03/1990",
			want: []Record{
				{Section: SectionDateOfBirth, Detail: "05/03/1990"},
				{Section: SectionDate, Detail: "05/03/1990"},
			},
		},
		{
			name: "email label",
			line: "Email: jane@example.com",
			want: []Record{{Section: SectionEmail, Detail: "jane@example.com"}},
		},
		{
			name: "phone and address on one line",
			line: "home phone: none, Phone: 555-0100 Address: 12 baker street",
			want: []Record{
				{Section: SectionPhone, Detail: "555-0100 Address: 12 baker street"},
				{Section: SectionAddress, Detail: "12 baker street"},
			},
		},
		{
			name: "project keyword",
			line: "built a chatbot and a Chatbot SDK",
			want: []Record{{Section: SectionProject, Detail: "built a chatbot and a Chatbot SDK"}},
		},
		{
			name: "certification keyword",
			line: "AWS Certified developer",
			want: []Record{{Section: SectionCertification, Detail: "AWS Certified developer"}},
		},
		{
			name: "amount",
			line: "salary $1,250.00 per month",
			want: []Record{{Section: SectionAmount, Detail: "$1,250.00"}},
		},
		{
			name: "whitespace is normalized first",
			line: "  Email:\t a@b.c  ",
			want: []Record{{Section: SectionEmail, Detail: "a@b.c"}},
		},
		{
			name: "empty label still recorded",
			line: "Email:",
			want: []Record{{Section: SectionEmail, Detail: ""}},
		},
		{
			name: "blank line",
			line: "   ",
			want: nil,
		},
	}

	c := NewClassifier(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			n := c.ClassifyLine(tt.line, acc)
			assert.Equal(t, len(tt.want), n)
			if tt.want == nil {
				assert.Empty(t, acc.Records())
				return
			}
			assert.Equal(t, tt.want, acc.Records())
		})
	}
}

func TestClassifier_ClassifyText_WholePage(t *testing.T) {
	acc := NewAccumulator()
	c := NewClassifier(Options{})
	n := c.ClassifyText("Name: Jane Doe\nEmail: jane@x.io\nPhone: 555", acc)

	want := []Record{
		{Section: SectionName, Detail: "Jane Doe Email: jane@x.io Phone: 555"},
		{Section: SectionPhone, Detail: "555"},
		{Section: SectionName, Detail: "Jane Doe Email"},
	}
	assert.Equal(t, len(want), n)
	assert.Equal(t, want, acc.Records())
}

func TestClassifier_ClassifyText_BlankPage(t *testing.T) {
	acc := NewAccumulator()
	assert.Zero(t, NewClassifier(Options{}).ClassifyText(" \r\n\t\n", acc))
	assert.Zero(t, acc.Len())
}

func TestClassifier_ClassifyText_SplitLines(t *testing.T) {
	text := strings.Join([]string{
		"Name:   Jane   Doe",
		"",
		"Skill: Go\r",
		"Phone: 555 0100",
	}, "\n")

	acc := NewAccumulator()
	c := NewClassifier(Options{SplitLines: true})
	n := c.ClassifyText(text, acc)

	want := []Record{
		{Section: SectionName, Detail: "Jane Doe"},
		{Section: SectionName, Detail: "Jane Doe"},
		{Section: SectionSkill, Detail: "Skill: Go"},
		{Section: SectionPhone, Detail: "555 0100"},
	}
	assert.Equal(t, len(want), n)
	assert.Equal(t, want, acc.Records())
}

func TestClassifier_AddRule(t *testing.T) {
	c := NewClassifierWithRules()
	c.AddRule(Rule{Section: SectionEmail, Extract: func(line string) (string, bool) {
		if strings.Contains(line, "@") {
			return line, true
		}
		return "", false
	}})

	acc := NewAccumulator()
	c.ClassifyText("reach me at a@b.c\nor not", acc)
	require.Equal(t, 1, acc.Len())
	assert.Equal(t, Record{Section: SectionEmail, Detail: "reach me at a@b.c or not"}, acc.Records()[0])
	assert.Len(t, c.Rules(), 1)
}

func TestDefaultRules_SectionsAreValid(t *testing.T) {
	for _, rule := range DefaultRules(Options{}) {
		assert.True(t, rule.Section.Valid(), "section %q", rule.Section)
	}
	assert.False(t, Section("Salary").Valid())
}

func TestAccumulator_RecordsIsACopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(SectionSkill, "Go")
	acc.Append(Record{Section: SectionDate, Detail: "01/01/2020"})

	got := acc.Records()
	got[0].Detail = "mutated"
	assert.Equal(t, "Go", acc.Records()[0].Detail)
	assert.Equal(t, 2, acc.Len())
}
