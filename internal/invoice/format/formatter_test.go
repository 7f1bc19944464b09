package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	issued := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		template string
		seq      int64
		want     string
	}{
		{DefaultInvoiceNumberTemplate, 1, "INV/2024/001"},
		{DefaultInvoiceNumberTemplate, 1234, "INV/2024/1234"},
		{"INV-{YY}{MM}{DD}-{SEQ}", 42, "INV-240307-42"},
		{"PF/{YYYY}/{MM}/{SEQ5}", 7, "PF/2024/03/00007"},
	}
	for _, tc := range cases {
		got, err := FormatInvoiceNumber(tc.template, issued, tc.seq)
		require.NoError(t, err, tc.template)
		assert.Equal(t, tc.want, got)
	}
}

func TestFormatInvoiceNumberErrors(t *testing.T) {
	issued := time.Now()

	_, err := FormatInvoiceNumber("", issued, 1)
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = FormatInvoiceNumber("INV-{SEQ}", issued, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("INV-{WEEK}-{SEQ}", issued, 1)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestSequenceScope(t *testing.T) {
	issued := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV/2024/", SequenceScope(DefaultInvoiceNumberTemplate, issued))
	assert.Equal(t, "INV-202403-", SequenceScope("INV-{YYYY}{MM}-{SEQ}", issued))
	assert.NotEqual(t,
		SequenceScope(DefaultInvoiceNumberTemplate, issued),
		SequenceScope(DefaultInvoiceNumberTemplate, issued.AddDate(1, 0, 0)))
}

func TestArtifactFileName(t *testing.T) {
	assert.Equal(t, "INV-2024-001.pdf", ArtifactFileName("INV/2024/001"))
	assert.Equal(t, "INV-2024-001.pdf", ArtifactFileName(`INV\2024/001`))
	assert.Equal(t, "PF-7.pdf", ArtifactFileName(" PF-7 "))
	assert.NotContains(t, ArtifactFileName("A/B/C/D"), "/")
}
