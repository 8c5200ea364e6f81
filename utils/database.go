package utils

import (
	"fmt"
	"reflect"
)

// ColumnList derives the ordered list of column names from the `db` struct
// tags of DBModel. Embedded structs are flattened; fields without a db tag
// are skipped.
func ColumnList[DBModel any]() []string {
	var dbModel DBModel
	return columnsOfType(reflect.TypeOf(dbModel))
}

func columnsOfType(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("ColumnList: %s is not a struct", t))
	}

	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			columns = append(columns, columnsOfType(field.Type)...)
			continue
		}
		tag, ok := field.Tag.Lookup("db")
		if !ok || tag == "-" {
			continue
		}
		columns = append(columns, tag)
	}
	return columns
}
