package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedCSV = `id,name,price_cents,category,image
1,手工草莓乳酪塔,12000,塔類,/images/strawberry-tart.jpg
2,伯爵茶磅蛋糕,9500,蛋糕,
`

func writeFeed(t *testing.T, name, content string, compress bool) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	if compress {
		gz := pgzip.NewWriter(f)
		_, err = gz.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		return path
	}

	_, err = f.WriteString(content)
	require.NoError(t, err)
	return path
}

func TestParseFeed_PlainCSV(t *testing.T) {
	path := writeFeed(t, "feed.csv", feedCSV, false)

	got, err := parseFeed(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, got.products, 2)
	assert.Equal(t, int64(1), got.products[0].ID)
	assert.Equal(t, "手工草莓乳酪塔", got.products[0].Name)
	assert.Equal(t, int64(12000), got.products[0].PriceCents)
	assert.Empty(t, got.products[1].Image)

	assert.True(t, got.ids.TestString("1"))
	assert.True(t, got.ids.TestString("2"))
}

func TestParseFeed_Gzipped(t *testing.T) {
	path := writeFeed(t, "feed.csv.gz", feedCSV, true)

	got, err := parseFeed(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, got.products, 2)
}

func TestParseFeed_BadRow(t *testing.T) {
	path := writeFeed(t, "feed.csv", "id,name,price_cents,category,image\n9,,100,蛋糕,\n", false)

	_, err := parseFeed(context.Background(), path)
	require.ErrorContains(t, err, "line 2")
}

func TestParseFeed_NoHeader(t *testing.T) {
	path := writeFeed(t, "feed.csv", "3,海鹽奶蓋捲,8000,蛋糕捲,/images/roll.jpg\n", false)

	got, err := parseFeed(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, got.products, 1)
	assert.Equal(t, int64(3), got.products[0].ID)
}

func TestParseRow(t *testing.T) {
	p, err := parseRow([]string{" 4 ", "經典可麗露", "4500", "常溫點心", "/images/canele.jpg"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.ID)
	assert.Equal(t, int64(4500), p.PriceCents)

	for _, rec := range [][]string{
		{"0", "x", "100", "y", ""},
		{"abc", "x", "100", "y", ""},
		{"1", "x", "-5", "y", ""},
		{"1", "", "100", "y", ""},
		{"1", "x", "100", "", ""},
	} {
		_, err := parseRow(rec)
		assert.Error(t, err, "%v", rec)
	}
}
