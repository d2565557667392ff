package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20260812094822",
		up:      mig_20260812094822_tasks_up,
		down:    mig_20260812094822_tasks_down,
	})
}

func mig_20260812094822_tasks_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS tasks (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name VARCHAR(100) NOT NULL,
            description VARCHAR(500),
            due_date DATE,
            completed BOOLEAN NOT NULL DEFAULT FALSE,
            created_by TEXT NOT NULL REFERENCES users(id),
            created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	// Every read goes through the ownership filter and lists newest first.
	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_tasks_created_by_created_at ON tasks(created_by, created_at DESC);
    `)

	return err
}

func mig_20260812094822_tasks_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS tasks;`)
	return err
}
