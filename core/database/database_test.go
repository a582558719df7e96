package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         "mysql",
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "integrity",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("SQLite", func(t *testing.T) {
		db, err := Connect(Config{Driver: "sqlite", Name: "file:connect_test?mode=memory&cache=shared"})
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
		assert.Equal(t, "sqlite", db.Dialector.Name())
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		_, err := Connect(Config{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}

func TestDialector_MySQLName(t *testing.T) {
	d, err := Dialector(Config{Host: "db", Port: 3306, User: "u", Password: "p@ss", Name: "integrity"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())
}

func TestOpen_TranslatesDuplicateKey(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: "file:translate_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE collections (id TEXT PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("INSERT INTO collections (id) VALUES ('c1')").Error)

	type collection struct{ ID string }
	err = db.Table("collections").Create(&collection{ID: "c1"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
