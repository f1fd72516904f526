package legacy

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unilib/portal-api/internal/model"
)

func newMockGateway(t *testing.T) (*catalogGateway, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gw := NewCatalogGateway(sqlx.NewDb(db, "mysql")).(*catalogGateway)
	return gw, mock
}

func copyColumns() []string {
	return []string{"item_id", "title", "barcode", "status_code"}
}

func TestFindByIDResolvesCopy(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectQuery("FROM catalog_items").
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(copyColumns()).
			AddRow(int64(100), "Estruturas de Dados", "BC1", "D"))

	ref, err := gw.FindByID(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "BC1", ref.Barcode)
	assert.Equal(t, model.CopyAvailable, ref.Availability)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDHandlesItemWithoutCopy(t *testing.T) {
	gw, mock := newMockGateway(t)

	// LEFT JOIN with no copy row: both copy columns come back NULL.
	mock.ExpectQuery("FROM catalog_items").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(copyColumns()).
			AddRow(int64(42), "Obra sem exemplar", nil, nil))

	ref, err := gw.FindByID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Empty(t, ref.Barcode)
	assert.Empty(t, ref.StatusCode)
	assert.Equal(t, model.CopyUnknown, ref.Availability)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDUnknownItemIsNil(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectQuery("FROM catalog_items").
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows(copyColumns()))

	ref, err := gw.FindByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDServesSecondLookupFromCache(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectQuery("FROM catalog_items").
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(copyColumns()).
			AddRow(int64(100), "Estruturas de Dados", "BC1", "D"))

	_, err := gw.FindByID(context.Background(), 100)
	require.NoError(t, err)

	// No second query expectation: the cached row serves this lookup.
	ref, err := gw.FindByID(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "BC1", ref.Barcode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCopyStatusInvalidatesCache(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectQuery("FROM catalog_items").
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(copyColumns()).
			AddRow(int64(100), "Estruturas de Dados", "BC1", "D"))
	mock.ExpectExec("UPDATE catalog_copies").
		WithArgs("R", int64(100), "BC1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM catalog_items").
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(copyColumns()).
			AddRow(int64(100), "Estruturas de Dados", "BC1", "R"))

	_, err := gw.FindByID(context.Background(), 100)
	require.NoError(t, err)

	require.NoError(t, gw.UpdateCopyStatus(context.Background(), 100, "BC1", "R"))

	ref, err := gw.FindByID(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, model.CopyReservedHold, ref.Availability)
	assert.NoError(t, mock.ExpectationsWereMet())
}
