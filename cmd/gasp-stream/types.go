package main

import (
	"reflect"

	"github.com/kallsyms/gasp/descriptor"
)

// Person is the CLI's demo schema. It covers several wire shapes:
// primitive fields, a sequence, a set, and a discriminated-union field
// whose alternatives are records. It has no dict or tuple field.
type Person struct {
	Name    string                 `gasp:"name"`
	Age     int64                  `gasp:"age"`
	Tags    []string               `gasp:"tags"`
	Emails  descriptor.Set[string] `gasp:"emails"`
	Contact ContactMethod          `gasp:"contact"`
}

// ContactMethod is a discriminated union between two ways of reaching a
// Person, dispatched by tag name or an explicit type= attribute (spec §6's
// "Record in a union slot").
type ContactMethod struct {
	descriptor.UnionMarker
}

func (ContactMethod) GASPAlternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(Email{}), reflect.TypeOf(Phone{})}
}

// Email is one ContactMethod alternative.
type Email struct {
	Address string `gasp:"address"`
}

// Phone is the other ContactMethod alternative.
type Phone struct {
	Number string `gasp:"number"`
}
