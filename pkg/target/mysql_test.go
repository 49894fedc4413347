package target

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestMySQLExecutor(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	exec := NewMySQLExecutor(db)
	ctx := context.Background()

	mock.ExpectQuery("EXPLAIN SELECT * FROM t WHERE a = 1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "estRows", "task", "access object", "operator info"}).
			AddRow("Point_Get_1", "1.00", "root", "table:t", "handle:1"),
	)
	plan, err := exec.Explain(ctx, "SELECT * FROM t WHERE a = 1;")
	require.NoError(t, err)
	require.Equal(t,
		"id\testRows\ttask\taccess object\toperator info\n"+
			"Point_Get_1\t1.00\troot\ttable:t\thandle:1",
		plan)

	mock.ExpectQuery("SELECT VERSION() AS version").WillReturnRows(
		sqlmock.NewRows([]string{"version"}).AddRow("8.0.11-TiDB-v8.5.0"),
	)
	version, err := exec.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, "8.0.11-TiDB-v8.5.0", version)

	mock.ExpectQuery("EXPLAIN SELECT * FROM missing").WillReturnError(
		sqlmock.ErrCancelled,
	)
	_, err = exec.Explain(ctx, "SELECT * FROM missing")
	require.ErrorContains(t, err, "EXPLAIN SELECT * FROM missing")

	mock.ExpectClose()
	require.NoError(t, exec.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}
