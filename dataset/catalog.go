package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/logging"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatasetRecord is one uploaded dataset in the catalog table.
type DatasetRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;uniqueIndex" json:"name"`
	Checksum   string    `gorm:"size:32" json:"checksum"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (DatasetRecord) TableName() string {
	return "datasets"
}

// NewDatasetRecord describes a stored file and the dataset parsed from it.
func NewDatasetRecord(file *StoredFile, ds *models.Dataset) DatasetRecord {
	return DatasetRecord{
		Name:       file.Name,
		Checksum:   file.Checksum,
		Rows:       ds.RowCount(),
		Columns:    ds.Len(),
		Size:       file.Size,
		UploadedAt: time.Now().UTC(),
	}
}

// SQLCatalog records uploads in a MySQL-protocol database.
type SQLCatalog struct {
	db *gorm.DB
}

// OpenSQLCatalog connects with the mysql driver and migrates the catalog table.
func OpenSQLCatalog(dsn string) (*SQLCatalog, error) {
	mode := logger.Silent
	if logging.Default.Enabled(logging.LevelDebug) {
		mode = logger.Info
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(mode)})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to catalog database: %w", err)
	}
	if err := db.AutoMigrate(&DatasetRecord{}); err != nil {
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return NewSQLCatalog(db), nil
}

func NewSQLCatalog(db *gorm.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

// Register inserts the record or refreshes the existing one with the same name.
func (c *SQLCatalog) Register(ctx context.Context, rec DatasetRecord) error {
	var existing DatasetRecord
	err := c.db.WithContext(ctx).Where("name = ?", rec.Name).Limit(1).Find(&existing).Error
	if err != nil {
		return fmt.Errorf("lookup %s: %w", rec.Name, err)
	}
	if existing.ID != 0 {
		rec.ID = existing.ID
	}
	if err := c.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("register %s: %w", rec.Name, err)
	}
	return nil
}

// List returns the catalog newest first.
func (c *SQLCatalog) List(ctx context.Context) ([]DatasetRecord, error) {
	var records []DatasetRecord
	if err := listQuery(c.db.WithContext(ctx), &records).Error; err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return records, nil
}

func listQuery(tx *gorm.DB, out *[]DatasetRecord) *gorm.DB {
	return tx.Order("uploaded_at DESC").Find(out)
}
