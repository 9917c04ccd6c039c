package tables

import (
	"github.com/JonMunkholm/gridcheck/internal/core"
)

// customOpNoChange is the custom operation value NS exports use for
// untouched lines.
const customOpNoChange = 0

func init() {
	registerNsCustomers()
	registerNsInvoiceDetail()
}

func registerNsCustomers() {
	core.Register(core.GridDefinition{
		Key:              "ns_customers",
		Label:            "NS Customers",
		IdentifierColumn: "internal_id",
		Columns: []core.ColumnConfig{
			{Key: "internal_id", Name: "Internal ID", DataType: core.TypeNumber},
			{Key: "salesforce_id_io", Name: "Salesforce ID", DataType: core.TypeString, Editable: true},
			{Key: "name", Name: "Name", DataType: core.TypeString, Editable: true, Required: core.RequiredFlag(true), Filterable: true},
			{Key: "company_name", Name: "Company Name", DataType: core.TypeString, Editable: true, Filterable: true},
			{Key: "balance", Name: "Balance", DataType: core.TypeNumber, Editable: true, Filterable: true},
			{
				Key: "overdue_balance", Name: "Overdue Balance", DataType: core.TypeNumber, Editable: true, Filterable: true,
				Validations: &core.Validations{
					NumberBoundaries: &core.NumberBoundaries{Min: ptr(0.0), ClampOnValidate: true},
				},
			},
			{
				Key: "days_overdue", Name: "Days Overdue", DataType: core.TypeNumber, Editable: true, Filterable: true,
				NaNFallback: ptr(0.0),
				Validations: &core.Validations{
					NumberBoundaries: &core.NumberBoundaries{Min: ptr(0.0), Max: ptr(3650.0), ClampOnValidate: true},
					ColumnDependent: []core.DependencyRule{{
						DependentColumnKey:  "overdue_balance",
						DependentColumnName: "Overdue Balance",
						Kind:                core.MustHaveData,
					}},
				},
			},
		},
	})
}

func registerNsInvoiceDetail() {
	core.Register(core.GridDefinition{
		Key:            "ns_invoice_detail",
		Label:          "NS Invoice Detail",
		IgnoredColumns: []string{"memo"},
		CustomOperation: &core.CustomOperationConfig{
			ColumnKey: "line_action",
			NoOp:      ptr(customOpNoChange),
		},
		Mapper: core.ChainMappers(StateMapper("shipping_address_state"), core.OptionMapper),
		Columns: []core.ColumnConfig{
			{Key: "sfdc_opp_id", Name: "Opportunity ID", DataType: core.TypeString, Required: core.RequiredFlag(true)},
			{Key: "sfdc_opp_line_id", Name: "Opportunity Line ID", DataType: core.TypeString, Required: core.RequiredFlag(true)},
			{Key: "document_number", Name: "Document Number", DataType: core.TypeString, Editable: true, Filterable: true},
			{Key: "date", Name: "Date", DataType: core.TypeDate, Editable: true, Required: core.RequiredFlag(true), Filterable: true},
			{Key: "date_due", Name: "Due Date", DataType: core.TypeDate, Editable: true},
			{Key: "memo", Name: "Memo", DataType: core.TypeString, Editable: true},
			{Key: "item", Name: "Item", DataType: core.TypeString, Editable: true, Filterable: true},
			{
				Key: "qty", Name: "Quantity", DataType: core.TypeNumber, Editable: true, Filterable: true,
				NaNFallback: ptr(1.0),
				Validations: &core.Validations{
					NumberBoundaries: &core.NumberBoundaries{Min: ptr(0.0)},
				},
			},
			{Key: "unit_price", Name: "Unit Price", DataType: core.TypeNumber, Editable: true},
			{Key: "amount", Name: "Amount", DataType: core.TypeNumber, Editable: true, Filterable: true},
			{Key: "start_date_line", Name: "Line Start", DataType: core.TypeDate, Editable: true},
			{
				Key: "end_date_line_level", Name: "Line End", DataType: core.TypeDate, Editable: true,
				Validations: &core.Validations{
					ColumnDependent: []core.DependencyRule{{
						DependentColumnKey:  "start_date_line",
						DependentColumnName: "Line Start",
						Kind:                core.MustHaveData,
						SkipIf:              &core.SkipCondition{ColumnKeys: []string{"memo", "item"}, Partial: true},
						Message:             "Lines with a start date need an end date unless a memo or item explains them.",
					}},
				},
			},
			{Key: "shipping_address_city", Name: "Ship City", DataType: core.TypeString, Editable: true},
			{
				Key: "shipping_address_state", Name: "Ship State", DataType: core.TypeString, Editable: true, Filterable: true,
				Options: stateOptions(),
			},
			{
				Key: "shipping_address_country", Name: "Ship Country", DataType: core.TypeString, Editable: true,
				DefaultValueOnNewRow: "US",
			},
		},
	})
}
