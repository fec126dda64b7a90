package descriptor_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallsyms/gasp/descriptor"
)

type plainRecord struct {
	Name    string
	private string //nolint:unused // exercises unexported-field skipping
	Skipped string `gasp:"-"`
	Renamed string `gasp:"alias"`
}

func TestDescribe_ClassFieldsRespectTagsAndVisibility(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf(plainRecord{}))
	require.NoError(t, err)
	assert.Equal(t, descriptor.KindClass, d.Kind)
	assert.Equal(t, "plainRecord", d.Name)

	_, ok := d.LookupField("private")
	assert.False(t, ok)
	_, ok = d.LookupField("Skipped")
	assert.False(t, ok)

	f, ok := d.LookupField("Name")
	require.True(t, ok)
	assert.Equal(t, descriptor.KindString, f.Type.Kind)

	f, ok = d.LookupField("alias")
	require.True(t, ok)
	assert.Equal(t, descriptor.KindString, f.Type.Kind)
}

type selfRef struct {
	Name  string
	Child *selfRef
}

func TestDescribe_SelfReferentialTypeBreaksCycleViaRegistry(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf(selfRef{}))
	require.NoError(t, err)

	childField, ok := d.LookupField("Child")
	require.True(t, ok)
	assert.Equal(t, descriptor.KindOptional, childField.Type.Kind)
	assert.Same(t, d, childField.Type.ElementType())
}

func TestDescribe_SetMarkerIsDistinctFromList(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf(descriptor.Set[string]{}))
	require.NoError(t, err)
	assert.Equal(t, descriptor.KindSet, d.Kind)
	assert.Equal(t, descriptor.KindString, d.ElementType().Kind)
}

func TestDescribe_VariadicTupleMarker(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf(descriptor.Tuple[int]{}))
	require.NoError(t, err)
	assert.Equal(t, descriptor.KindTuple, d.Kind)
	assert.True(t, d.Variadic)

	pos, ok := d.TuplePositional(50)
	require.True(t, ok)
	assert.Equal(t, descriptor.KindInt, pos.Kind)
}

func TestDescribe_FixedArrayTuple(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf([3]string{}))
	require.NoError(t, err)
	assert.Equal(t, descriptor.KindTuple, d.Kind)
	assert.False(t, d.Variadic)
	_, ok := d.TuplePositional(3)
	assert.False(t, ok)
	_, ok = d.TuplePositional(2)
	assert.True(t, ok)
}

func TestDescribe_UnsupportedKindFails(t *testing.T) {
	_, err := descriptor.Describe(reflect.TypeOf(make(chan int)))
	assert.Error(t, err)
}

func TestDescribe_EmptyArrayFails(t *testing.T) {
	_, err := descriptor.Describe(reflect.TypeOf([0]int{}))
	assert.Error(t, err)
}

type altA struct{ X string }
type altB struct{ Y int64 }

type union2 struct {
	descriptor.UnionMarker
}

func (union2) GASPAlternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(altA{}), reflect.TypeOf(altB{})}
}

func TestDescribe_TwoAlternativeUnionDescribesAsUnion(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf(union2{}))
	require.NoError(t, err)
	assert.Equal(t, descriptor.KindUnion, d.Kind)
	assert.Len(t, d.Args, 2)

	alt, ok := d.UnionAlternative("altA")
	require.True(t, ok)
	assert.Equal(t, descriptor.KindClass, alt.Kind)
}

type tooFewAlts struct {
	descriptor.UnionMarker
}

func (tooFewAlts) GASPAlternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(altA{})}
}

func TestDescribe_UnionWithOneAlternativeFails(t *testing.T) {
	_, err := descriptor.Describe(reflect.TypeOf(tooFewAlts{}))
	assert.Error(t, err)
}

type aliasedUnion struct {
	descriptor.UnionMarker
}

func (aliasedUnion) GASPAlternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(altA{}), reflect.TypeOf(altB{})}
}

func (aliasedUnion) GASPAliasName() string { return "Outcome" }

func TestDescribe_AliasNamedUnionPreservesAliasAsDisplayName(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf(aliasedUnion{}))
	require.NoError(t, err)
	assert.Equal(t, descriptor.KindUnion, d.Kind)
	assert.Equal(t, "Outcome", d.Name)
}

type nullableRecord struct {
	descriptor.UnionMarker
}

func (nullableRecord) GASPAlternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(altA{}), reflect.TypeOf(descriptor.Null{})}
}

func TestDescribe_NullAlternativeCollapsesToOptional(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf(nullableRecord{}))
	require.NoError(t, err)
	assert.Equal(t, descriptor.KindOptional, d.Kind)
	require.NotNil(t, d.ElementType())
	assert.Equal(t, descriptor.KindClass, d.ElementType().Kind)
	assert.Equal(t, "altA", d.ElementType().Name)
}

func TestZeroValue_ClassPopulatesEveryDeclaredField(t *testing.T) {
	d, err := descriptor.Describe(reflect.TypeOf(plainRecord{}))
	require.NoError(t, err)

	z := descriptor.ZeroValue(d).(map[string]any)
	assert.Equal(t, "", z["Name"])
	assert.Equal(t, "", z["alias"])
}
