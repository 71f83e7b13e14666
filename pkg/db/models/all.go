package models

// All lists every persisted model in dependency order. Used by the SQLite
// bootstrap and tests.
func All() []any {
	return []any{
		&User{},
		&Book{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderLine{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
