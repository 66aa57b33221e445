package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pivolan/data_visualizer/dataset"
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/logging"
)

type datasetCatalog interface {
	Register(ctx context.Context, rec dataset.DatasetRecord) error
	List(ctx context.Context) ([]dataset.DatasetRecord, error)
}

// handleFile stores an upload, unpacking archives, and parses it once so a
// broken file is reported right away. The catalog is optional.
func handleFile(ctx context.Context, store *dataset.Store, catalog datasetCatalog, name string, r io.Reader) (*dataset.StoredFile, *models.Dataset, error) {
	file, err := store.Save(name, r)
	if err != nil {
		return nil, nil, err
	}
	ds, err := dataset.Load(file.Path)
	if err != nil {
		return file, nil, err
	}
	if catalog != nil {
		if err := catalog.Register(ctx, dataset.NewDatasetRecord(file, ds)); err != nil {
			logging.Error("Error registering %s in catalog: %v", file.Name, err)
		}
	}
	return file, ds, nil
}

// uploadSummary is the short text shown after a successful upload.
func uploadSummary(file *dataset.StoredFile, ds *models.Dataset) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File %s uploaded successfully! %d rows, %d columns.\n", file.Name, ds.RowCount(), ds.Len()))
	names := ds.ColumnNames()
	sb.WriteString("Columns: ")
	sb.WriteString(strings.Join(names, ", "))
	return sb.String()
}
