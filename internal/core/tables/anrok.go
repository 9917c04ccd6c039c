package tables

import (
	"github.com/JonMunkholm/gridcheck/internal/core"
)

func init() {
	registerAnrokTransactions()
}

func registerAnrokTransactions() {
	core.Register(core.GridDefinition{
		Key:              "anrok_transactions",
		Label:            "Anrok Transactions",
		IdentifierColumn: "transaction_id",
		IgnoredColumns:   []string{"void"},
		Mapper:           core.ChainMappers(StateMapper("customer_address_region"), core.OptionMapper),
		Columns: []core.ColumnConfig{
			{Key: "transaction_id", Name: "Transaction ID", DataType: core.TypeString, Required: core.RequiredFlag(true)},
			{Key: "customer_id", Name: "Customer ID", DataType: core.TypeString, Editable: true, Filterable: true},
			{
				Key: "customer_name", Name: "Customer Name", DataType: core.TypeString, Editable: true, Filterable: true,
				Required: core.RequiredConditional{ErrorMessage: "Customer Name is required"},
			},
			{Key: "invoice_date", Name: "Invoice Date", DataType: core.TypeDate, Editable: true, Required: core.RequiredFlag(true), Filterable: true},
			{
				Key: "tax_date", Name: "Tax Date", DataType: core.TypeDate, Editable: true,
				Validations: &core.Validations{
					ColumnDependent: []core.DependencyRule{{
						DependentColumnKey:  "invoice_date",
						DependentColumnName: "Invoice Date",
						Kind:                core.MustHaveData,
					}},
				},
			},
			{
				Key: "transaction_currency", Name: "Currency", DataType: core.TypeString, Editable: true, Filterable: true,
				DefaultValueOnNewRow: "USD",
				Validations: &core.Validations{
					RegexRules: []core.RegexRule{{Pattern: `^[A-Z]{3}$`, Message: "Currency must be a 3 letter ISO code"}},
				},
			},
			{
				Key: "sales_amount", Name: "Sales Amount", DataType: core.TypeNumber, Editable: true, Filterable: true,
				NaNFallback: ptr(0.0),
			},
			{
				Key: "tax_amount", Name: "Tax Amount", DataType: core.TypeNumber, Editable: true,
				NaNFallback: ptr(0.0),
				Validations: &core.Validations{
					NumberBoundaries: &core.NumberBoundaries{Min: ptr(0.0)},
					ColumnDependent: []core.DependencyRule{{
						DependentColumnKey:  "exempt_reasons",
						DependentColumnName: "Exempt Reasons",
						Kind:                core.MustBeEmpty,
					}},
				},
			},
			{Key: "exempt_reasons", Name: "Exempt Reasons", DataType: core.TypeString, Editable: true},
			{Key: "void", Name: "Void", DataType: core.TypeBoolean, Editable: true, Filterable: true},
			{Key: "customer_address_city", Name: "City", DataType: core.TypeString, Editable: true, Filterable: true},
			{
				Key: "customer_address_region", Name: "State", DataType: core.TypeString, Editable: true, Filterable: true,
				Options: stateOptions(),
			},
			{Key: "customer_address_postal_code", Name: "Postal Code", DataType: core.TypeString, Editable: true},
			{
				Key: "customer_country_code", Name: "Country", DataType: core.TypeString, Editable: true, Filterable: true,
				DefaultValueOnNewRow: "US",
				Validations: &core.Validations{
					RegexRules: []core.RegexRule{{Pattern: `^[A-Z]{2}$`, Message: "Country must be a 2 letter ISO code"}},
				},
			},
		},
	})
}
