package main

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/infrastructure/memory"
)

// seedDemo carga maestros mínimos para STORE_DRIVER=memory (empresa 1).
func seedDemo(s *memory.Store) {
	s.AddState(entity.State{ID: 27, Code: "MH", Description: "Maharashtra", StateType: 0})
	s.AddState(entity.State{ID: 29, Code: "KA", Description: "Karnataka", StateType: 1})

	s.AddParty(entity.Party{ID: 1, CompanyID: 1, Kind: entity.PartyKindCustomer, Name: "Apollo Pharmacy", Address: "Pune", StateID: 27, Enabled: true})
	s.AddParty(entity.Party{ID: 2, CompanyID: 1, Kind: entity.PartyKindCustomer, Name: "MedPlus", Address: "Bengaluru", StateID: 29, Enabled: true})
	s.AddSupplier(entity.Party{ID: 100, CompanyID: 1, Name: "Cipla Distributors", Address: "Mumbai", StateID: 27, Enabled: true})

	s.AddHSN(entity.HSN{ID: 1, Code: "3004", CGSTPct: decimal.NewFromInt(6), SGSTPct: decimal.NewFromInt(6), IGSTPct: decimal.NewFromInt(12)})
	s.AddHSN(entity.HSN{ID: 2, Code: "3005", CGSTPct: decimal.NewFromInt(9), SGSTPct: decimal.NewFromInt(9), IGSTPct: decimal.NewFromInt(18)})
	s.AddPacking(entity.Packing{ID: 1, Description: "10x10", UnitsPerPack: decimal.NewFromInt(10)})

	s.AddMaterial(entity.Material{ID: 1, CompanyID: 1, Code: "PCM500", Description: "Paracetamol 500mg", HSNID: 1, PackingID: 1, LotTracked: true})
	s.AddMaterial(entity.Material{ID: 2, CompanyID: 1, Code: "BNDG", Description: "Venda elástica", HSNID: 2})
}
