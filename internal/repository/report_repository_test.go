package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/repository"
	"github.com/straye-as/crm-reports/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestReportRepository_FetchClients_Range(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)

	testutil.CreateTestClient(t, db, "old", "contactado", "web", nil, base.AddDate(0, 0, -40))
	inWindow := testutil.CreateTestClient(t, db, "new", "por_contactar", "feria", testutil.Ptr("ana"), base.AddDate(0, 0, -3))

	clients, err := repo.FetchClients(context.Background(), repository.Between("created_at", base.AddDate(0, 0, -30), base))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, inWindow.ID, clients[0].ID)
	assert.Equal(t, "ana", clients[0].VendorKey())
}

func TestReportRepository_FetchClients_AllWhenZeroQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)

	testutil.CreateTestClient(t, db, "a", "contactado", "web", nil, base.AddDate(0, 0, -2))
	testutil.CreateTestClient(t, db, "b", "vendido", "", nil, base.AddDate(0, 0, -1))

	clients, err := repo.FetchClients(context.Background(), repository.RowQuery{})
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "a", clients[0].Name, "rows are ordered by creation")
}

func TestReportRepository_FetchEmptyIsEmptySlice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)

	sales, err := repo.FetchSales(context.Background(), repository.RowQuery{})
	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)
}

func TestReportRepository_FetchVendors_Equals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)

	testutil.CreateTestVendor(t, db, "ana", true, testutil.Ptr(1000.0))
	testutil.CreateTestVendor(t, db, "bruno", false, nil)

	vendors, err := repo.FetchVendors(context.Background(), repository.RowQuery{
		Equals: map[string]interface{}{"active": true},
	})
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "ana", vendors[0].Username)
	assert.Equal(t, 1000.0, *vendors[0].MonthlySalesTarget)
}

func TestReportRepository_FetchInteractions_In(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)

	c1 := testutil.CreateTestClient(t, db, "a", "contactado", "web", nil, base)
	c2 := testutil.CreateTestClient(t, db, "b", "contactado", "web", nil, base)
	testutil.CreateTestInteraction(t, db, c1.ID, "ana", "llamada", "contesto", base.Add(time.Hour))
	testutil.CreateTestInteraction(t, db, c2.ID, "ana", "email", "pendiente", base.Add(2*time.Hour))

	rows, err := repo.FetchInteractions(context.Background(), repository.RowQuery{
		In: map[string][]interface{}{"client_id": {c2.ID}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, c2.ID, rows[0].ClientID)

	rows, err = repo.FetchInteractions(context.Background(), repository.RowQuery{
		In: map[string][]interface{}{"client_id": {}},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReportRepository_RejectsUnknownColumns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)

	tests := []struct {
		name  string
		query repository.RowQuery
	}{
		{name: "range", query: repository.Between("deleted_at", base, base)},
		{name: "equals", query: repository.RowQuery{Equals: map[string]interface{}{"1=1; --": 1}}},
		{name: "in", query: repository.RowQuery{In: map[string][]interface{}{"password": {"x"}}}},
		{name: "columns", query: repository.RowQuery{Columns: []string{"id", "secret"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.FetchProjects(context.Background(), tt.query)
			assert.ErrorIs(t, err, repository.ErrInvalidColumn)
		})
	}
}

func TestReportRepository_FetchSales_Error(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sales"`)).
		WillReturnError(errors.New("connection reset"))

	repo := repository.NewReportRepository(db)
	_, err = repo.FetchSales(context.Background(), repository.RowQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch sales")
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_FetchProjects_Postgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "projects" WHERE status = $1 ORDER BY name ASC, id ASC`)).
		WithArgs("activo").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).AddRow(id.String(), "Los Olivos", "activo"))

	repo := repository.NewReportRepository(db)
	projects, err := repo.FetchProjects(context.Background(), repository.RowQuery{
		Equals: map[string]interface{}{"status": "activo"},
	})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, id, projects[0].ID)
	assert.Equal(t, "Los Olivos", projects[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
