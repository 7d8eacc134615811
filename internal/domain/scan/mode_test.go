package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestFormatsFor(t *testing.T) {
	area, err := FormatsFor(ModeArea)
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatQRCode, FormatAztec, FormatDataMatrix, FormatPDF417}, area)

	line, err := FormatsFor(ModeLine)
	require.NoError(t, err)
	assert.Equal(t, []Format{
		FormatCode128, FormatCode39, FormatCode93, FormatEAN13, FormatEAN8,
		FormatUPCA, FormatUPCE, FormatITF, FormatCodabar, FormatRSS14,
	}, line)

	// auto is a curated subset of the union, not the full union
	auto, err := FormatsFor(ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, []Format{
		FormatQRCode, FormatAztec, FormatDataMatrix, FormatCode128, FormatCode39,
		FormatEAN13, FormatEAN8, FormatUPCA, FormatUPCE, FormatPDF417,
	}, auto)
	assert.NotContains(t, auto, FormatCode93)
	assert.NotContains(t, auto, FormatITF)

	_, err = FormatsFor(Mode("bogus"))
	assert.Error(t, err)
}

func TestFormatsForReturnsCopy(t *testing.T) {
	a, err := FormatsFor(ModeArea)
	require.NoError(t, err)
	a[0] = FormatITF

	b, err := FormatsFor(ModeArea)
	require.NoError(t, err)
	assert.Equal(t, FormatQRCode, b[0])
}

func TestIsArea(t *testing.T) {
	for _, f := range []Format{FormatQRCode, FormatAztec, FormatDataMatrix, FormatMaxiCode, FormatPDF417} {
		assert.True(t, f.IsArea(), string(f))
	}
	for _, f := range []Format{FormatCode128, FormatEAN13, FormatUPCA, FormatCodabar, FormatRSS14} {
		assert.False(t, f.IsArea(), string(f))
	}
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModeAuto.Valid())
	assert.True(t, ModeArea.Valid())
	assert.True(t, ModeLine.Valid())
	assert.False(t, Mode("").Valid())
	assert.False(t, Mode("AUTO").Valid())
}
