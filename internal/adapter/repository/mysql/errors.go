package mysql

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	mysqlErrFKNoParent        = 1452
	mysqlErrTableAccessDenied = 1142
	mysqlErrDupEntry          = 1062
	pgInsufficientPrivilege   = "42501"
	pgForeignKeyViolation     = "23503"
)

func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var me *mysqlDriver.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrFKNoParent {
		return true
	}
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == pgForeignKeyViolation
}

func isPermissionDenied(err error) bool {
	var me *mysqlDriver.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrTableAccessDenied {
		return true
	}
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == pgInsufficientPrivilege
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqlDriver.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDupEntry
}
