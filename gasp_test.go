package gasp_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallsyms/gasp"
	"github.com/kallsyms/gasp/descriptor"
)

type simplePerson struct {
	Name string `gasp:"name"`
	Age  int64  `gasp:"age"`
}

func TestFeed_PrimitiveFields(t *testing.T) {
	p, err := gasp.New[simplePerson](gasp.NewOptions())
	require.NoError(t, err)

	partial, err := p.Feed([]byte("<simplePerson><name>Ali</name><age>"))
	require.NoError(t, err)
	assert.Equal(t, "Ali", partial.(map[string]any)["name"])

	partial, err = p.Feed([]byte("30</age></simplePerson>"))
	require.NoError(t, err)
	assert.True(t, p.IsComplete())
	assert.Equal(t, int64(30), partial.(map[string]any)["age"])
}

func TestFeed_ByteBoundaryInvariance(t *testing.T) {
	doc := "<simplePerson><name>Robert</name><age>42</age></simplePerson>"

	whole, err := gasp.New[simplePerson](gasp.NewOptions())
	require.NoError(t, err)
	var wholeResult any
	wholeResult, err = whole.Feed([]byte(doc))
	require.NoError(t, err)

	split, err := gasp.New[simplePerson](gasp.NewOptions())
	require.NoError(t, err)
	var splitResult any
	for i := 0; i < len(doc); i++ {
		splitResult, err = split.Feed([]byte(doc[i : i+1]))
		require.NoError(t, err)
	}

	assert.Equal(t, wholeResult, splitResult)
}

func TestFeed_IgnoredTagTransparentOutsideAndInside(t *testing.T) {
	p, err := gasp.New[simplePerson](gasp.NewOptions())
	require.NoError(t, err)

	doc := "chatter before<think>planning…</think><simplePerson><name>Bob</name></simplePerson>"
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Bob", partial.(map[string]any)["name"])
}

type listHolder struct {
	Items []string `gasp:"items"`
}

func TestFeed_SequenceAccumulates(t *testing.T) {
	p, err := gasp.New[listHolder](gasp.NewOptions())
	require.NoError(t, err)

	doc := `<listHolder><items><item>a</item><item>b</item><item>c</item></items></listHolder>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, partial.(map[string]any)["items"])
}

type setHolder struct {
	Tags descriptor.Set[string] `gasp:"tags"`
}

func TestFeed_SetDeduplicates(t *testing.T) {
	p, err := gasp.New[setHolder](gasp.NewOptions())
	require.NoError(t, err)

	doc := `<setHolder><tags><item>x</item><item>x</item><item>y</item></tags></setHolder>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, partial.(map[string]any)["tags"])
}

func TestFeed_BareTupleRootOpensOnFirstTopLevelTag(t *testing.T) {
	p, err := gasp.New[descriptor.Tuple[int64]](gasp.NewOptions())
	require.NoError(t, err)

	doc := `<t><item>1</item><item>2</item><item>3</item></t>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	assert.True(t, p.IsComplete())
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, partial)
}

func TestFeed_BarePrimitiveRootOpensOnFirstTopLevelTag(t *testing.T) {
	p, err := gasp.New[string](gasp.NewOptions())
	require.NoError(t, err)

	partial, err := p.Feed([]byte("<value>hello</value>"))
	require.NoError(t, err)
	assert.True(t, p.IsComplete())
	assert.Equal(t, "hello", partial)
}

type dictHolder struct {
	Scores map[string]int64 `gasp:"scores"`
}

func TestFeed_DictRequiresKeyAttribute(t *testing.T) {
	p, err := gasp.New[dictHolder](gasp.NewOptions())
	require.NoError(t, err)

	doc := `<dictHolder><scores><item key="alice">10</item><item>99</item></scores></dictHolder>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"alice": int64(10)}, partial.(map[string]any)["scores"])

	errs := p.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, string(errs[0].Code), "gasp-missing-dict-key")
}

type success struct {
	Message string `gasp:"message"`
}

type failure struct {
	Reason string `gasp:"reason"`
}

type outcome struct {
	descriptor.UnionMarker
}

func (outcome) GASPAlternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(success{}), reflect.TypeOf(failure{})}
}

type response struct {
	Result outcome `gasp:"result"`
}

func TestFeed_UnionByNestedTagName(t *testing.T) {
	p, err := gasp.New[response](gasp.NewOptions())
	require.NoError(t, err)

	doc := `<response><result><success><message>ok</message></success></result></response>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	assert.True(t, p.IsComplete())
	got := partial.(map[string]any)["result"].(map[string]any)
	assert.Equal(t, "ok", got["message"])
}

func TestFeed_UnionByTypeAttribute(t *testing.T) {
	p, err := gasp.New[response](gasp.NewOptions())
	require.NoError(t, err)

	doc := `<response><result type="failure"><reason>broke</reason></result></response>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	got := partial.(map[string]any)["result"].(map[string]any)
	assert.Equal(t, "broke", got["reason"])
}

func TestFeed_UnionAlternativeShortcut(t *testing.T) {
	p, err := gasp.New[response](gasp.NewOptions())
	require.NoError(t, err)

	// The alternative's own tag appears directly as the object's child,
	// without the "result" wrapper (spec §4.3 item 2's union shortcut).
	doc := `<response><success><message>shortcut</message></success></response>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	got := partial.(map[string]any)["result"].(map[string]any)
	assert.Equal(t, "shortcut", got["message"])
}

func TestFeed_SelfClosingTagIsEmptyRecord(t *testing.T) {
	p, err := gasp.New[simplePerson](gasp.NewOptions())
	require.NoError(t, err)

	partial, err := p.Feed([]byte("<simplePerson/>"))
	require.NoError(t, err)
	assert.True(t, p.IsComplete())
	assert.Equal(t, "", partial.(map[string]any)["name"])
	assert.Equal(t, int64(0), partial.(map[string]any)["age"])
}

func TestFeed_UnknownFieldRecordedAndDiscarded(t *testing.T) {
	p, err := gasp.New[simplePerson](gasp.NewOptions())
	require.NoError(t, err)

	doc := `<simplePerson><nickname>Al</nickname><name>Alistair</name></simplePerson>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Alistair", partial.(map[string]any)["name"])

	errs := p.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "gasp-unknown-field", string(errs[0].Code))
}

func TestFeed_MismatchedCloseSynthesizesIntermediateCloses(t *testing.T) {
	p, err := gasp.New[response](gasp.NewOptions())
	require.NoError(t, err)

	// "success" is never explicitly closed; the outer "response" close
	// must synthesize it (spec §4.2/§4.3's tolerant-close rule).
	doc := `<response><result><success><message>late` + `</response>`
	partial, err := p.Feed([]byte(doc))
	require.NoError(t, err)
	assert.True(t, p.IsComplete())
	got := partial.(map[string]any)["result"].(map[string]any)
	assert.Equal(t, "late", got["message"])
}

func TestValidate_RequiresRootOpened(t *testing.T) {
	p, err := gasp.New[simplePerson](gasp.NewOptions())
	require.NoError(t, err)

	_, err = p.Validate()
	assert.Error(t, err)
}

func TestGetPartial_NilBeforeRootOpens(t *testing.T) {
	p, err := gasp.New[simplePerson](gasp.NewOptions())
	require.NoError(t, err)

	assert.Nil(t, p.GetPartial())
	_, err = p.Feed([]byte("some prose before the tag "))
	require.NoError(t, err)
	assert.Nil(t, p.GetPartial())
}

func TestFeed_MemoryBudgetIsFatal(t *testing.T) {
	opts := gasp.NewOptions().WithMaxBufferedText(4)
	p, err := gasp.New[simplePerson](opts)
	require.NoError(t, err)

	_, err = p.Feed([]byte("<simplePerson><name>much too long</name>"))
	require.Error(t, err)
}
