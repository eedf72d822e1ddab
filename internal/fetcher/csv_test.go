package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadCSV_UTF8(t *testing.T) {
	path := writeTemp(t, "decl.csv", []byte("신고번호,작성자\nD1,kim\nD2,lee\n"))

	header, records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"신고번호", "작성자"}, header)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"D1", "kim"}, records[0])
}

func TestReadCSV_UTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("신고번호,작성자\nD1,kim\n")...)
	path := writeTemp(t, "bom.csv", data)

	header, _, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "신고번호", header[0], "BOM must not leak into the first header cell")
}

func TestReadCSV_CP949(t *testing.T) {
	encoded, _, err := transform.String(korean.EUCKR.NewEncoder(), "신고번호,납세자상호\nD1,한국무역\n")
	require.NoError(t, err)
	path := writeTemp(t, "cp949.csv", []byte(encoded))

	header, records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"신고번호", "납세자상호"}, header)
	require.Len(t, records, 1)
	assert.Equal(t, "한국무역", records[0][1])
}

func TestReadCSV_TrimsCells(t *testing.T) {
	path := writeTemp(t, "pad.csv", []byte("신고번호, 작성자 \nD1 , kim\n"))

	header, records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "작성자", header[1])
	assert.Equal(t, "D1", records[0][0])
}

func TestReadCSV_EmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.csv", nil)

	_, _, err := ReadCSV(path)
	assert.Error(t, err)
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, _, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
