package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConditionBool(t *testing.T) {
	cmp, err := ParseCondition("RequiresEdd == true")
	require.NoError(t, err)

	assert.Equal(t, "RequiresEdd", cmp.Field)
	assert.Equal(t, OpEqual, cmp.Op)
	assert.Equal(t, LiteralBool, cmp.Kind)
	assert.True(t, cmp.BoolValue)
}

func TestParseConditionInt(t *testing.T) {
	cmp, err := ParseCondition("ClientAge<21")
	require.NoError(t, err)

	assert.Equal(t, "ClientAge", cmp.Field)
	assert.Equal(t, OpLessThan, cmp.Op)
	assert.Equal(t, LiteralInt, cmp.Kind)
	assert.Equal(t, 21, cmp.IntValue)
}

func TestParseConditionQuotedString(t *testing.T) {
	cmp, err := ParseCondition(`AmlRiskLevel == "High"`)
	require.NoError(t, err)

	assert.Equal(t, LiteralString, cmp.Kind)
	assert.Equal(t, "High", cmp.StringValue)
}

func TestParseConditionBareString(t *testing.T) {
	cmp, err := ParseCondition("AmlRiskLevel != High")
	require.NoError(t, err)

	assert.Equal(t, OpNotEqual, cmp.Op)
	assert.Equal(t, "High", cmp.StringValue)
}

func TestParseConditionRejectsUnsupportedOperator(t *testing.T) {
	_, err := ParseCondition("ClientAge >= 21")
	// ">=" parses as ">" with literal "= 21", which is not an integer
	assert.Error(t, err)

	_, err = ParseCondition("ClientAge ~ 21")
	assert.Error(t, err)
}

func TestParseConditionRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"ClientAge",
		"== 5",
		"Client Age == 5",
		"Province <",
		"Province < \"Lusaka\"",
	}
	for _, expr := range cases {
		_, err := ParseCondition(expr)
		assert.Error(t, err, "expected parse failure for %q", expr)
	}
}

func TestEvalComparisons(t *testing.T) {
	fields := map[string]interface{}{
		"RequiresEdd":  true,
		"ClientAge":    34,
		"AmlRiskLevel": "High",
	}

	for _, tc := range []struct {
		expr string
		want bool
	}{
		{"RequiresEdd == true", true},
		{"RequiresEdd != true", false},
		{"ClientAge > 30", true},
		{"ClientAge < 30", false},
		{"ClientAge == 34", true},
		{"AmlRiskLevel == High", true},
		{"AmlRiskLevel != \"Low\"", true},
	} {
		cmp, err := ParseCondition(tc.expr)
		require.NoError(t, err, tc.expr)

		got, err := cmp.Eval(fields)
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, got, tc.expr)
	}
}

func TestEvalMissingFieldIsError(t *testing.T) {
	cmp, err := ParseCondition("NoSuchField == true")
	require.NoError(t, err)

	_, err = cmp.Eval(map[string]interface{}{"ClientAge": 30})
	assert.Error(t, err)
}

func TestEvalTypeMismatchIsError(t *testing.T) {
	cmp, err := ParseCondition("ClientAge == true")
	require.NoError(t, err)

	_, err = cmp.Eval(map[string]interface{}{"ClientAge": 30})
	assert.Error(t, err)
}
