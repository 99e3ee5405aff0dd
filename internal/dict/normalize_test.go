package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Employee-ID":              "employeeid",
		"employee_id":              "employeeid",
		"EMPLOYEE ID":              "employeeid",
		"userId":                   "userid",
		"empInfo.personIdExternal": "personidexternal", // точечный путь — берём хвост
		"a.b.c.Pay-Group":          "paygroup",
		"":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeKey(in), "input %q", in)
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	inputs := []string{"Employee-ID", "empInfo.startDate", "PAY_SCALE AREA", "x"}
	for _, in := range inputs {
		once := NormalizeKey(in)
		assert.Equal(t, once, NormalizeKey(once))
	}
}
