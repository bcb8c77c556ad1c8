package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPDFHeader(t *testing.T) {
	assert.True(t, HasPDFHeader(samplePDF))
	assert.False(t, HasPDFHeader([]byte("PK\x03\x04 docx archive")))
	assert.False(t, HasPDFHeader(nil))
}

func TestInspect_CountsPagesAndText(t *testing.T) {
	info, err := Inspect(samplePDF)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 2, info.Pages)
	assert.Equal(t, len("Jane Doe Senior Go Engineer")+len("Kubernetes PostgreSQL"), info.TextChars)
}

func TestInspect_NotAPDF(t *testing.T) {
	info, err := Inspect([]byte("plain text resume"))
	assert.Nil(t, info)

	var ierr *InspectError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Error(), "missing %PDF- header")
}

func TestInspect_Malformed(t *testing.T) {
	info, err := Inspect([]byte("%PDF-1.4\nthis is not really a pdf"))
	assert.Nil(t, info)

	var ierr *InspectError
	assert.ErrorAs(t, err, &ierr)
}
