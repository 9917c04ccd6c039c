package tables

import (
	"github.com/JonMunkholm/gridcheck/internal/core"
)

func init() {
	registerSfdcCustomers()
	registerSfdcPriceBook()
}

func registerSfdcCustomers() {
	core.Register(core.GridDefinition{
		Key:              "sfdc_customers",
		Label:            "SFDC Customers",
		IdentifierColumn: "account_id_casesafe",
		Columns: []core.ColumnConfig{
			{
				Key: "account_id_casesafe", Name: "Account ID", DataType: core.TypeString,
				Required: core.RequiredFlag(true),
				Validations: &core.Validations{
					RegexRules: []core.RegexRule{{Pattern: `^[a-zA-Z0-9]{18}$`, Message: "Account ID must be an 18 character case-safe ID"}},
				},
			},
			{Key: "account_name", Name: "Account Name", DataType: core.TypeString, Editable: true, Required: core.RequiredFlag(true), Filterable: true},
			{Key: "last_activity", Name: "Last Activity", DataType: core.TypeDate, Editable: true, Filterable: true},
			{
				Key: "type", Name: "Type", DataType: core.TypeString, Editable: true, Filterable: true,
				Options: []core.Option{
					{Key: "customer", Text: "Customer"},
					{Key: "prospect", Text: "Prospect"},
					{Key: "partner", Text: "Partner"},
				},
				Validations: &core.Validations{
					StringExclusion: &core.StringExclusion{ForbiddenValue: "other", CaseInsensitive: true, Message: "Type 'Other' is no longer used"},
				},
			},
		},
	})
}

func registerSfdcPriceBook() {
	core.Register(core.GridDefinition{
		Key:            "sfdc_price_book",
		Label:          "SFDC Price Book",
		IgnoredColumns: []string{"list_price"},
		Columns: []core.ColumnConfig{
			{Key: "price_book_name", Name: "Price Book", DataType: core.TypeString, Editable: true, Required: core.RequiredFlag(true), Filterable: true},
			{
				Key: "list_price", Name: "List Price", DataType: core.TypeNumber, Editable: true, Filterable: true,
				NaNFallback: ptr(0.0),
				Validations: &core.Validations{
					NumberBoundaries: &core.NumberBoundaries{Min: ptr(0.0), ClampOnValidate: true},
				},
			},
			{Key: "product_name", Name: "Product", DataType: core.TypeString, Editable: true, Filterable: true},
			{
				Key: "product_code", Name: "Product Code", DataType: core.TypeString, Editable: true,
				Required: core.RequiredConditional{OnlyIfEmpty: []string{"product_id_casesafe"}},
				Validations: &core.Validations{
					RegexRules: []core.RegexRule{{Pattern: `^[A-Z0-9-]+$`, Message: "Product Code may only contain A-Z, 0-9 and '-'"}},
				},
			},
			{
				Key: "product_id_casesafe", Name: "Product ID", DataType: core.TypeString, Editable: true,
				Required: core.RequiredConditional{OnlyIfEmpty: []string{"product_code"}},
			},
		},
	})
}
