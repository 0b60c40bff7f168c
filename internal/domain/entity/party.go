package entity

import "time"

// Tipos de tercero.
const (
	PartyKindCustomer = "CUSTOMER"
	PartyKindSupplier = "SUPPLIER"
)

// Party representa un cliente o proveedor del registro de terceros.
type Party struct {
	ID         int64
	CompanyID  int64
	Kind       string
	Name       string
	Address    string
	GSTNo      string
	StateID    int64
	CreditDays int
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// State representa un estado/territorio de la India.
// StateType 0 = mismo estado de la empresa (intra), 1 = otro estado (inter).
type State struct {
	ID          int64
	Code        string
	Description string
	StateType   int
}

// Regime deriva el régimen tributario del tipo de estado.
func (s *State) Regime() TaxRegime {
	if s != nil && s.StateType == int(TaxRegimeInter) {
		return TaxRegimeInter
	}
	return TaxRegimeIntra
}
