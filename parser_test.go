package treepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StepsAndAxes(t *testing.T) {
	expr, err := Parse("//method[@name='M']//if")
	require.NoError(t, err)
	require.Len(t, expr.Steps, 2)
	assert.Equal(t, AxisDescendant, expr.Steps[0].Axis)
	assert.Equal(t, "method", expr.Steps[0].Test)
	assert.Len(t, expr.Steps[0].Preds, 1)
	assert.Equal(t, AxisDescendant, expr.Steps[1].Axis)
	assert.Equal(t, "if", expr.Steps[1].Test)
	assert.Equal(t, "//method[@name='M']//if", expr.String())
}

func TestParse_DefaultAxes(t *testing.T) {
	expr, err := Parse("/class/method/block")
	require.NoError(t, err)
	require.Len(t, expr.Steps, 3)
	for _, step := range expr.Steps {
		assert.Equal(t, AxisChild, step.Axis)
	}

	// No leading slash still parses as a child step.
	expr, err = Parse("class/method")
	require.NoError(t, err)
	require.Len(t, expr.Steps, 2)
	assert.Equal(t, "class", expr.Steps[0].Test)
}

func TestParse_ExplicitAxes(t *testing.T) {
	cases := map[string]Axis{
		"//if/ancestor::method":         AxisAncestor,
		"//if/ancestor-or-self::*":      AxisAncestorOrSelf,
		"//if/following-sibling::while": AxisFollowingSibling,
		"//if/preceding-sibling::*":     AxisPrecedingSibling,
	}
	for path, want := range cases {
		expr, err := Parse(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, expr.Steps[1].Axis, path)
	}
}

func TestParse_ParentStep(t *testing.T) {
	expr, err := Parse("//if/../..")
	require.NoError(t, err)
	require.Len(t, expr.Steps, 3)
	assert.Equal(t, AxisParent, expr.Steps[1].Axis)
	assert.Equal(t, AxisParent, expr.Steps[2].Axis)
	assert.Empty(t, expr.Steps[1].Test)
}

func TestParse_WildcardTest(t *testing.T) {
	expr, err := Parse("//*[@name='foo']")
	require.NoError(t, err)
	require.Len(t, expr.Steps, 1)
	assert.Empty(t, expr.Steps[0].Test, "* node test matches any tag")
	assert.Len(t, expr.Steps[0].Preds, 1)
}

func TestParse_PredicateForms(t *testing.T) {
	valid := []string{
		"//method[TestMethod]",
		"//method[@name='Get*']",
		"//method[3]",
		"//statement[last()]",
		"//statement[last()-2]",
		"//method[async]",
		"//method[@async]",
		"//method[@type='method']",
		"//statement[@contains='Console']",
		"//statement[@matches='^if.*']",
		"//method[contains(@name, 'User')]",
		"//method[starts-with(@name, 'Get')]",
		"//method[ends-with(@name, 'Async')]",
		"//statement[contains(., 'Console')]",
		"//method[@async and contains(@name, 'Async')]",
		"//class[@abstract or starts-with(@name, 'Base')]",
		"//method[not(contains(@name, 'Product'))]",
		"//method[public][1]",
		"//if[.//throw]",
		"//if[./block/throw]",
		"//method[.//if[@contains='Console'] and async]",
		"//if[not(.//throw)]",
	}
	for _, path := range valid {
		_, err := Parse(path)
		assert.NoError(t, err, path)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"//method[",
		"//method[@name='M'",
		"//method]",
		"//if/unknown-axis::*",
		"//if/ancestor::",
		"//method/",
		"//method[@name='unterminated]",
		"//method[@]",
		"//method[@matches='[bad']",
		"//method[not(async]",
		"//method[contains(@kind, 'x')]",
		"//if[.//]",
		"//if[./]",
	}
	for _, path := range invalid {
		_, err := Parse(path)
		require.Error(t, err, path)
		var syn *SyntaxError
		require.ErrorAs(t, err, &syn, path)
		assert.Equal(t, path, syn.Path)
	}
}

func TestParse_StrictAttributes(t *testing.T) {
	// Fail-open by default: unknown attributes parse and simply match
	// nothing at evaluation time.
	_, err := Parse("//method[@visibility='public']")
	require.NoError(t, err)

	_, err = Parse("//method[@visibility='public']", WithStrictAttributes())
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Contains(t, syn.Msg, "visibility")

	// Known attributes are unaffected.
	_, err = Parse("//method[@name='M'][@type='method']", WithStrictAttributes())
	require.NoError(t, err)
}

func TestParse_NoTreeTouched(t *testing.T) {
	// Parsing is side-effect-free: the same input parses identically twice.
	a, err := Parse("//class[@name='A?']/method[last()-1]")
	require.NoError(t, err)
	b, err := Parse("//class[@name='A?']/method[last()-1]")
	require.NoError(t, err)
	assert.Equal(t, len(a.Steps), len(b.Steps))
}
