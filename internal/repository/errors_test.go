package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))

	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'idx_clients_email'"}
	assert.ErrorIs(t, translate(dup), ErrDuplicateKey)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", dup)), ErrDuplicateKey)

	fk := &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}
	assert.ErrorIs(t, translate(fk), ErrForeignKey)

	other := errors.New("connection refused")
	assert.Equal(t, other, translate(other))
}
