package entity

// Part repuesto del catálogo. El stock se deriva del ledger, nunca se guarda aquí.
type Part struct {
	ID        string
	CompanyID string
	Code      string // código único por empresa
	Name      string
}
