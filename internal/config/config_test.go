package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmcore/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "Delhi", cfg.Billing.HomeJurisdiction)
	assert.Equal(t, "IN", cfg.Billing.InvoicePrefix)
	assert.Equal(t, "QT", cfg.Billing.QuotationPrefix)
	assert.Equal(t, 3, cfg.Billing.CodeWidth)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "noop", cfg.Email.Provider)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CRM_BILLING_HOME_JURISDICTION", "Karnataka")
	t.Setenv("CRM_BILLING_CODE_WIDTH", "5")
	t.Setenv("CRM_REDIS_ADDR", "localhost:6379")
	t.Setenv("CRM_CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Karnataka", cfg.Billing.HomeJurisdiction)
	assert.Equal(t, 5, cfg.Billing.CodeWidth)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_InvalidBilling(t *testing.T) {
	t.Setenv("CRM_BILLING_QUOTATION_PREFIX", "IN")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestBillingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.BillingConfig
		wantErr bool
	}{
		{"valid", config.BillingConfig{HomeJurisdiction: "Delhi", InvoicePrefix: "IN", QuotationPrefix: "QT", CodeWidth: 3}, false},
		{"blank home", config.BillingConfig{HomeJurisdiction: "  ", InvoicePrefix: "IN", QuotationPrefix: "QT", CodeWidth: 3}, true},
		{"missing prefix", config.BillingConfig{HomeJurisdiction: "Delhi", QuotationPrefix: "QT", CodeWidth: 3}, true},
		{"zero width", config.BillingConfig{HomeJurisdiction: "Delhi", InvoicePrefix: "IN", QuotationPrefix: "QT"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.DSN())
}
