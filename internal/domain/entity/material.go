package entity

import "github.com/shopspring/decimal"

// Material representa un producto farmacéutico del maestro de materiales.
type Material struct {
	ID          int64
	CompanyID   int64
	Code        string
	Description string
	HSNID       int64
	PackingID   int64
	LotTracked  bool
}

// HSN clasificación tributaria con los porcentajes GST aplicables.
type HSN struct {
	ID      int64
	Code    string
	CGSTPct decimal.Decimal
	SGSTPct decimal.Decimal
	IGSTPct decimal.Decimal
}

// Packing presentación (caja) de un material.
type Packing struct {
	ID           int64
	Description  string
	UnitsPerPack decimal.Decimal
}
