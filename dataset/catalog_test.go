package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:9004)/default",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true, DryRun: true})
	require.NoError(t, err)
	return db
}

func TestNewDatasetRecord(t *testing.T) {
	ds, err := models.NewDataset("sales.csv", []models.Column{
		{Name: "city", Kind: models.KindText, Values: []models.Value{models.TextValue("NY"), models.TextValue("LA")}},
		{Name: "sales", Kind: models.KindNumber, Values: []models.Value{models.Number(1), models.Number(2)}},
	})
	require.NoError(t, err)

	rec := NewDatasetRecord(&StoredFile{Name: "sales.csv", Checksum: "abc", Size: 42}, ds)
	assert.Equal(t, "sales.csv", rec.Name)
	assert.Equal(t, 2, rec.Rows)
	assert.Equal(t, 2, rec.Columns)
	assert.Equal(t, int64(42), rec.Size)
	assert.False(t, rec.UploadedAt.IsZero())
}

func TestCatalogListQuery(t *testing.T) {
	db := dryRunDB(t)
	var records []DatasetRecord
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return listQuery(tx, &records)
	})
	assert.True(t, strings.HasPrefix(sql, "SELECT * FROM `datasets`"), sql)
	assert.Contains(t, sql, "ORDER BY uploaded_at DESC")
}

func TestCatalogDryRun(t *testing.T) {
	catalog := NewSQLCatalog(dryRunDB(t))
	ctx := context.Background()

	require.NoError(t, catalog.Register(ctx, DatasetRecord{Name: "sales.csv", Rows: 3, Columns: 2}))
	records, err := catalog.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
