package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/finora")
	t.Setenv("AUTH0_DOMAIN", "finora.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.finora.app")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, 12, cfg.Automation.HorizonMonths)
	assert.Equal(t, time.Hour, cfg.Automation.Interval)
	assert.True(t, cfg.Automation.Enabled)
	assert.False(t, cfg.S3.Enabled())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Catalog.Accounts)
	assert.Empty(t, cfg.PublicURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTOMATION_INTERVAL", "15m")
	t.Setenv("AUTOMATION_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("S3_BUCKET", "receipts")
	t.Setenv("ACCOUNTS", "Carteira, Nubank ,")
	t.Setenv("PUBLIC_API_URL", "https://api.finora.dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Automation.Interval)
	assert.False(t, cfg.Automation.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, []string{"Carteira", "Nubank"}, cfg.Catalog.Accounts)
	assert.Equal(t, "https://api.finora.dev", cfg.PublicURL)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing database", "DATABASE_URL", ""},
		{"missing auth0 domain", "AUTH0_DOMAIN", ""},
		{"bad timezone", "TIMEZONE", "Mars/Olympus"},
		{"horizon too large", "RECURRENCE_HORIZON_MONTHS", "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestCatalogConfig_Build(t *testing.T) {
	catalog, err := CatalogConfig{
		IncomeCategories: []string{"Salário", "Freela"},
		ExpenseGroups:    "Casa:Aluguel|Luz; Comida:Mercado",
	}.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"Salário", "Freela"}, catalog.IncomeCategories)
	require.Len(t, catalog.ExpenseGroups, 2)
	assert.Equal(t, "Comida", catalog.ExpenseGroups[1].Name)
	assert.Equal(t, []string{"Aluguel", "Luz"}, catalog.ExpenseGroups[0].Subcategories)
	assert.NotEmpty(t, catalog.Accounts)

	_, err = CatalogConfig{ExpenseGroups: ":Aluguel"}.Build()
	assert.Error(t, err)
}
