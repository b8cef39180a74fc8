package models

// All lists every persisted model, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Startup{},
		&LedgerRecord{},
		&InvestmentRecord{},
		&FundraisingDetails{},
	}
}
