package core

func ptr[T any](v T) *T { return &v }

// customerGrid is the grid most engine tests run against.
func customerGrid() *GridDefinition {
	return &GridDefinition{
		Key:              "customers",
		Label:            "Customers",
		IdentifierColumn: "id",
		Columns: []ColumnConfig{
			{Key: "id", Name: "ID", DataType: TypeNumber},
			{Key: "name", Name: "Name", DataType: TypeString, Editable: true, Required: RequiredFlag(true)},
			{Key: "active", Name: "Active", DataType: TypeBoolean, Editable: true, Required: RequiredFlag(true)},
			{
				Key: "amount", Name: "Amount", DataType: TypeNumber, Editable: true,
				NaNFallback: ptr(-1.0),
				Validations: &Validations{
					NumberBoundaries: &NumberBoundaries{Min: ptr(0.0), Max: ptr(100.0), ClampOnValidate: true},
				},
			},
			{
				Key: "email", Name: "Email", DataType: TypeString, Editable: true,
				Validations: &Validations{
					RegexRules: []RegexRule{{Pattern: `^[^@\s]+@[^@\s]+$`, Message: "Email is invalid"}},
				},
			},
			{Key: "start", Name: "Start", DataType: TypeDate, Editable: true},
		},
	}
}

func row(op Operation, values map[string]any) Row {
	return Row{Op: op, Values: values}
}
