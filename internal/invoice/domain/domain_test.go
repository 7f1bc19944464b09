package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestNumberInputAcceptsNumbersAndStrings(t *testing.T) {
	var item LineItemInput
	require.NoError(t, json.Unmarshal([]byte(`{"quantity":2,"rate":"500.00","amount":null}`), &item))
	assert.Equal(t, NumberInput("2"), item.Quantity)
	assert.Equal(t, NumberInput("500.00"), item.Rate)
	assert.Equal(t, NumberInput(""), item.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"quantity":"two"}`), &item))
	assert.Equal(t, NumberInput("two"), item.Quantity)
}

func TestFieldErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("validate: %w", NewFieldError("client.email", ErrMissingClientField))
	assert.True(t, errors.Is(err, ErrMissingClientField))
	assert.True(t, IsValidation(err))

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "client.email", fe.Field)
}

func TestJurisdictionCurrency(t *testing.T) {
	assert.Equal(t, "INR", JurisdictionDomestic.Currency())
	assert.Equal(t, "USD", JurisdictionGlobal.Currency())
	assert.False(t, Jurisdiction("MARS").Valid())
	assert.False(t, IsValidation(ErrRenderFailed))
}

// MySQL cannot index unbounded TEXT or default TEXT/JSON columns, and
// datetime(3) rejects a bare CURRENT_TIMESTAMP default.
func TestModelsMigrateOnEveryDialect(t *testing.T) {
	for _, model := range []any{&Invoice{}, &InvoiceItem{}, &InvoiceSequence{}} {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)

		for _, f := range s.Fields {
			if f.DBName == "" {
				continue
			}
			name := s.Table + "." + f.DBName
			typ := strings.ToLower(f.TagSettings["TYPE"])
			_, indexed := f.TagSettings["INDEX"]
			_, unique := f.TagSettings["UNIQUEINDEX"]

			assert.NotEqual(t, "jsonb", typ, name)
			assert.NotContains(t, strings.ToUpper(f.DefaultValue), "CURRENT_TIMESTAMP", name)
			if f.PrimaryKey || indexed || unique {
				assert.NotEqual(t, "text", typ, name)
			}
			if typ == "text" {
				assert.Empty(t, f.DefaultValue, name)
			}
		}
	}
}
