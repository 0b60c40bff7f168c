// Package numbering: ejercicio fiscal indio (abril–marzo), alcance de los consecutivos y
// formato legal del número de documento por registro.
package numbering

import (
	"fmt"
	"time"

	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

// FiscalYear ejercicio fiscal identificado por su año de inicio (2025 = 1/abr/2025 – 31/mar/2026).
type FiscalYear int

// FiscalYearOf devuelve el ejercicio al que pertenece la fecha.
func FiscalYearOf(t time.Time) FiscalYear {
	if t.Month() >= time.April {
		return FiscalYear(t.Year())
	}
	return FiscalYear(t.Year() - 1)
}

// Window ventana semiabierta [1/abr del año de inicio, 1/abr del año siguiente).
func (fy FiscalYear) Window() Window {
	return Window{
		From: time.Date(int(fy), time.April, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(int(fy)+1, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Label prefijo "AA-AA" del número de documento (ej. 2025 → "25-26").
func (fy FiscalYear) Label() string {
	return fmt.Sprintf("%02d-%02d", int(fy)%100, (int(fy)+1)%100)
}

// Window intervalo de fechas [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// Contains indica si la fecha (solo día) cae dentro de la ventana.
func (w Window) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(w.From) && d.Before(w.To)
}

// Scope alcance de un contador. FiscalYear = 0 significa contador corrido sin reinicio.
type Scope struct {
	CompanyID  int64
	Register   entity.RegisterKind
	FiscalYear FiscalYear
}

// PerFiscalYear indica si el contador se reinicia en cada ejercicio.
func (s Scope) PerFiscalYear() bool {
	return s.FiscalYear != 0
}

// Key clave estable del alcance (bloqueos distribuidos y fila del contador).
func (s Scope) Key() string {
	if s.PerFiscalYear() {
		return fmt.Sprintf("seq:%d:%s:%d", s.CompanyID, s.Register, int(s.FiscalYear))
	}
	return fmt.Sprintf("seq:%d:%s:all", s.CompanyID, s.Register)
}

// Policy regla de numeración de un registro.
type Policy struct {
	Register      entity.RegisterKind
	PerFiscalYear bool
	Series        string
	Width         int
}

// Las facturas de venta reinician por ejercicio; el resto lleva un contador corrido por
// empresa y registro. La asimetría es la política histórica y no se generaliza.
var policies = map[entity.RegisterKind]Policy{
	entity.RegisterSalesInvoice:    {Register: entity.RegisterSalesInvoice, PerFiscalYear: true, Series: "A", Width: 5},
	entity.RegisterSalesReturn:     {Register: entity.RegisterSalesReturn, Series: "CN", Width: 4},
	entity.RegisterSalesOrder:      {Register: entity.RegisterSalesOrder, Series: "SO", Width: 5},
	entity.RegisterPurchaseOrder:   {Register: entity.RegisterPurchaseOrder, Series: "PO", Width: 5},
	entity.RegisterPurchaseInvoice: {Register: entity.RegisterPurchaseInvoice, Series: "PI", Width: 5},
}

// PolicyFor devuelve la política del registro.
func PolicyFor(register entity.RegisterKind) (Policy, error) {
	p, ok := policies[register]
	if !ok {
		return Policy{}, fmt.Errorf("numbering: sin política para %s", register)
	}
	return p, nil
}

// ScopeFor alcance del contador para una empresa y fecha de documento.
func (p Policy) ScopeFor(companyID int64, docDate time.Time) Scope {
	s := Scope{CompanyID: companyID, Register: p.Register}
	if p.PerFiscalYear {
		s.FiscalYear = FiscalYearOf(docDate)
	}
	return s
}

// Format número legal: "{AA-AA}/{serie}{consecutivo con ceros}".
// El prefijo de ejercicio es siempre el de la fecha del documento, aun con contador corrido.
func (p Policy) Format(fy FiscalYear, seqNo int64) string {
	return fmt.Sprintf("%s/%s%0*d", fy.Label(), p.Series, p.Width, seqNo)
}
