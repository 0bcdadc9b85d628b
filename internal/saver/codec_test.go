package saver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec(t *testing.T) {
	assert.IsType(t, ParquetCodec{}, NewCodec(" Parquet "))
	assert.IsType(t, CSVCodec{}, NewCodec("csv"))
	assert.IsType(t, JSONCodec{}, NewCodec("json"))
	assert.Nil(t, NewCodec("xml"))
}

func TestCSVCodec_LoadRejectsShortLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	content := "t,o,h,l,c,v\n1700000000,1,2,0.5,1.5,100\n1700086400,1,2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := CSVCodec{}.Load(path)
	require.Error(t, err)
}

func TestCSVCodec_LoadHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, CSVCodec{}.Save(nil, path))

	bars, err := CSVCodec{}.Load(path)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestCSVCodec_SaveLoad(t *testing.T) {
	bars := []Bar{
		{Timestamp: 1700000000, Open: 10.125, High: 11, Low: 9.5, Close: 10.5, Volume: 1e6},
		{Timestamp: 1700086400, Open: 10.5, High: 12.75, Low: 10.25, Close: 12.333333333333334, Volume: 0},
	}
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, CSVCodec{}.Save(bars, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "t,o,h,l,c,v\n1700000000,10.125,11,9.5,10.5,1000000\n"))

	got, err := CSVCodec{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, bars, got)
}
