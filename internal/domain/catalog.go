package domain

// CategoryGroup is an expense category with its subcategories.
type CategoryGroup struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// Catalog is the closed set of category and account labels accepted at the
// API boundary. The engine itself treats categories as plain strings.
type Catalog struct {
	IncomeCategories []string        `json:"incomeCategories"`
	ExpenseGroups    []CategoryGroup `json:"expenseGroups"`
	Accounts         []string        `json:"accounts"`
}

// DefaultCatalog returns the built-in labels.
func DefaultCatalog() *Catalog {
	return &Catalog{
		IncomeCategories: []string{"Salário", "Investimentos", "Renda Extra", "Presente", "Reembolso", CategoryOther},
		ExpenseGroups: []CategoryGroup{
			{Name: "Moradia", Subcategories: []string{"Aluguel", "Condomínio", "Luz/Água", "Internet", "Manutenção"}},
			{Name: "Alimentação", Subcategories: []string{"Mercado", "Restaurante", "Delivery", "Feira"}},
			{Name: "Transporte", Subcategories: []string{"Combustível", "Transporte Público", "Uber/Táxi", "IPVA", "Seguro"}},
			{Name: "Saúde", Subcategories: []string{"Farmácia", "Médico", "Plano de Saúde", "Academia", "Terapia"}},
			{Name: "Lazer", Subcategories: []string{"Cinema", "Viagem", "Hobby", "Streaming", "Jogos"}},
			{Name: "Educação", Subcategories: []string{"Faculdade", "Cursos", "Material Escolar", "Livros"}},
			{Name: "Financeiro", Subcategories: []string{"Cartão de Crédito", "Impostos", "Tarifas", "Empréstimos"}},
			{Name: "Pessoal", Subcategories: []string{"Vestuário", "Cosméticos", "Salão/Barbearia"}},
			{Name: CategoryOther, Subcategories: []string{"Doação", "Imprevistos", "Transferência"}},
		},
		Accounts: []string{DefaultAccount, "Nubank", "Inter", "Itaú", "Bradesco", "Santander", "Caixa", "Investimentos", "Cofre/Reserva"},
	}
}

// SuggestionLabels is the list a classifier may answer with for txType.
func (c *Catalog) SuggestionLabels(txType TransactionType) []string {
	if txType == TransactionTypeIncome {
		return append([]string(nil), c.IncomeCategories...)
	}
	labels := make([]string, 0, len(c.ExpenseGroups))
	for _, g := range c.ExpenseGroups {
		labels = append(labels, g.Name)
	}
	return labels
}

// IsSuggestionLabel reports whether label is one of SuggestionLabels(txType).
func (c *Catalog) IsSuggestionLabel(txType TransactionType, label string) bool {
	for _, l := range c.SuggestionLabels(txType) {
		if l == label {
			return true
		}
	}
	return false
}

// IsAccount reports whether name is a configured account.
func (c *Catalog) IsAccount(name string) bool {
	for _, a := range c.Accounts {
		if a == name {
			return true
		}
	}
	return false
}

// IsCategory reports whether name is acceptable as the category of a txType
// entry. Expense entries may use a group or one of its subcategories, and the
// engine's system categories are always accepted.
func (c *Catalog) IsCategory(txType TransactionType, name string) bool {
	switch name {
	case CategoryTransfer, CategoryCardPayment, CategoryDebts, CategoryInvestment, CategoryOther:
		return true
	}
	if txType == TransactionTypeIncome {
		for _, cat := range c.IncomeCategories {
			if cat == name {
				return true
			}
		}
		return false
	}
	for _, g := range c.ExpenseGroups {
		if g.Name == name {
			return true
		}
		for _, sub := range g.Subcategories {
			if sub == name {
				return true
			}
		}
	}
	return false
}
