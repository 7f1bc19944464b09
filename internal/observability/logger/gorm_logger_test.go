package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM invoices":                                  "SELECT",
		"  insert into invoice_items (id) values (1)":             "INSERT",
		"WITH s AS (SELECT 1) UPDATE invoice_sequences SET value=1": "SELECT",
		"DELETE FROM invoice_items WHERE invoice_id = 1":          "DELETE",
		"":                                                        "UNKNOWN",
		"VACUUM":                                                  "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationFromSQL(sql), sql)
	}
}

func TestParamsFilterDropsValues(t *testing.T) {
	l := NewGormLogger(DefaultGormLoggerConfig())
	sql, params := l.ParamsFilter(context.Background(), "SELECT * FROM invoices WHERE client_email = ?", "a@b.c")
	assert.Equal(t, "SELECT * FROM invoices WHERE client_email = ?", sql)
	assert.Nil(t, params)
}
