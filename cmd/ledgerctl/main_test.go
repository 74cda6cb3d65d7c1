package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ebetcoin/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreditArgs(t *testing.T) {
	credits, err := parseCreditArgs([]string{"1:10.50", "2:3"})
	require.NoError(t, err)
	assert.Equal(t, []model.Credit{
		{UserID: 1, Amount: "10.50"},
		{UserID: 2, Amount: "3"},
	}, credits)

	_, err = parseCreditArgs([]string{"1=10"})
	assert.Error(t, err)

	_, err = parseCreditArgs([]string{"abc:10"})
	assert.Error(t, err)
}

func TestReadCreditFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credits.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"user_id":4,"amount":"25.00"}]`), 0o600))

	credits, err := readCreditFile(path)
	require.NoError(t, err)
	assert.Equal(t, []model.Credit{{UserID: 4, Amount: "25.00"}}, credits)

	_, err = readCreditFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
