package paimon

import (
	"testing"

	"paimon-cli/internal/paimon/paimontest"
)

type warehouse struct {
	*paimontest.Warehouse
}

func newWarehouse(t *testing.T) *warehouse {
	t.Helper()
	return &warehouse{paimontest.New(t)}
}

func (w *warehouse) catalog() *Catalog {
	return NewCatalog(w.FileIO(), nil)
}

type column = paimontest.Column

var (
	add  = paimontest.Add
	del  = paimontest.Delete
	vals = paimontest.Vals
)
