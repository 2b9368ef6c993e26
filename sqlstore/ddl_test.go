package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/redi-datasource/schema"
)

const ddlSchema = `
models:
  - name: Task
    fields:
      - {name: TaskId, type: uuid, primaryKey: true}
      - {name: Title, type: string}
      - {name: DueAt, type: datetimeoffset, nullable: true}
      - {name: OwnerId, type: int}
    relations:
      - {name: Owner, type: manyToOne, model: User, foreignKey: OwnerId, references: UserId}
  - name: User
    fields:
      - {name: UserId, type: int, primaryKey: true}
      - {name: Name, type: string, map: full_name}
    relations:
      - {name: Tasks, type: oneToMany, model: Task, foreignKey: OwnerId, references: UserId}
`

func TestCreateTableSQL(t *testing.T) {
	schemas, err := schema.Parse([]byte(ddlSchema))
	require.NoError(t, err)
	models := map[string]*schema.Schema{}
	for _, s := range schemas {
		models[s.Name] = s
	}

	tests := []struct {
		scheme string
		want   string
	}{
		{"postgres", "CREATE TABLE IF NOT EXISTS \"tasks\" (\n" +
			"  \"task_id\" UUID PRIMARY KEY,\n" +
			"  \"title\" VARCHAR(255) NOT NULL,\n" +
			"  \"due_at\" TIMESTAMPTZ,\n" +
			"  \"owner_id\" INTEGER NOT NULL,\n" +
			"  FOREIGN KEY (\"owner_id\") REFERENCES \"users\" (\"user_id\")\n)"},
		{"mysql", "CREATE TABLE IF NOT EXISTS `tasks` (\n" +
			"  `task_id` CHAR(36) PRIMARY KEY,\n" +
			"  `title` VARCHAR(255) NOT NULL,\n" +
			"  `due_at` DATETIME,\n" +
			"  `owner_id` INTEGER NOT NULL,\n" +
			"  FOREIGN KEY (`owner_id`) REFERENCES `users` (`user_id`)\n)"},
	}
	for _, tt := range tests {
		t.Run(tt.scheme, func(t *testing.T) {
			d, err := DialectFor(tt.scheme)
			require.NoError(t, err)
			got, err := d.CreateTableSQL(models["Task"], models)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	d, err := DialectFor("sqlite")
	require.NoError(t, err)
	got, err := d.CreateTableSQL(models["User"], models)
	require.NoError(t, err)
	assert.Contains(t, got, `"full_name" TEXT NOT NULL`)
	assert.NotContains(t, got, "FOREIGN KEY")
}

func TestCreationOrder(t *testing.T) {
	schemas, err := schema.Parse([]byte(ddlSchema))
	require.NoError(t, err)
	ordered := creationOrder(schemas)
	require.Len(t, ordered, 2)
	assert.Equal(t, "User", ordered[0].Name)
	assert.Equal(t, "Task", ordered[1].Name)
}

func TestCreateTables(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	defer db.Close()

	schemas, err := schema.Parse([]byte(ddlSchema))
	require.NoError(t, err)
	require.NoError(t, db.CreateTables(ctx, schemas))
	// a second run finds the tables in place
	require.NoError(t, db.CreateTables(ctx, schemas))

	_, err = db.ExecContext(ctx, `INSERT INTO users (user_id, full_name) VALUES (1, 'Ann')`)
	require.NoError(t, err)
	var n int
	require.NoError(t, db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks`))
	assert.Zero(t, n)
}
